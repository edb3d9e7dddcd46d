package carousel

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orbitmenu/orbit/pkg/guard"
	"github.com/orbitmenu/orbit/pkg/math3d"
	"github.com/orbitmenu/orbit/pkg/scene"
	"github.com/orbitmenu/orbit/pkg/tween"
)

// Submenu is one ring of items spawned around a parent carousel item.
// It owns its scene nodes and its guard; the Manager owns the submenu
// itself and guarantees at most one exists at a time.
type Submenu struct {
	cfg Config
	log *zap.Logger
	eng *tween.Engine

	guard *guard.Guard

	parentItem *scene.Node // non-owning back-reference
	root       *scene.Node
	closeBtn   *scene.Node
	items      []*Item

	currentIndex   int
	highlight      int
	targetRotation float64

	// init is touched from asset-loader callbacks, which may arrive
	// from other goroutines.
	mu           sync.Mutex
	pendingLoads int
	initialized  bool
	degradedInit bool
	ready        chan struct{}
	disposing    bool
	disposed     bool

	preview *FloatingPreview
	watches []deadlineWatch
}

// deadlineWatch bounds how long a pending future may stay unresolved.
type deadlineWatch struct {
	fut       *Future
	deadline  time.Time
	onTimeout func()
}

// sweepWatches resolves expired watches degraded, runs their timeout
// handlers when the watch won the future, and returns the watches still
// pending.
func sweepWatches(watches []deadlineWatch, now time.Time) []deadlineWatch {
	kept := watches[:0]
	for _, w := range watches {
		if w.fut.Settled() {
			continue
		}
		if now.After(w.deadline) {
			if w.fut.complete(nil, true) && w.onTimeout != nil {
				w.onTimeout()
			}
			continue
		}
		kept = append(kept, w)
	}
	return kept
}

// NewSubmenu builds a submenu ring for the given item descriptors.
// Placeholder visuals are ready synchronously; label and icon geometry
// load through cfg.Loader and flip the readiness channel when all
// loads settle. The ring starts hidden (scale and opacity zero) until
// Show is called.
func NewSubmenu(eng *tween.Engine, parentItem *scene.Node, descs []ItemDescriptor, cfg Config) (*Submenu, error) {
	if len(descs) == 0 {
		return nil, ErrEmptyItems
	}
	cfg = cfg.withDefaults()

	root := scene.NewNode("submenu")
	root.Scale = 0
	root.SetOpacity(0)

	closeBtn := scene.NewNode("close")
	closeBtn.Markers.CloseButton = true
	closeBtn.Position = math3d.V3(0, 1.0, 0)
	root.Add(closeBtn)

	s := &Submenu{
		cfg:        cfg,
		log:        cfg.Logger,
		eng:        eng,
		parentItem: parentItem,
		root:       root,
		closeBtn:   closeBtn,
		ready:      make(chan struct{}),
		guard: guard.New(guard.Config{
			MaxHold: cfg.MaxHold,
			Clock:   cfg.Clock,
			Logger:  cfg.Logger,
		}),
	}

	n := len(descs)
	for i, desc := range descs {
		item := buildItem(desc, i, n, cfg.Radius, true)
		root.Add(item.Node)
		s.items = append(s.items, item)
	}

	// Bring item 0 to the front.
	s.targetRotation = math3d.FrontRotation(s.items[0].Angle)
	root.Rotation.Y = s.targetRotation
	s.updateItemEmphasis()

	s.startAssetLoads()
	return s, nil
}

// startAssetLoads kicks off label/icon loading. With no loader the
// submenu is initialized immediately on placeholders.
func (s *Submenu) startAssetLoads() {
	if s.cfg.Loader == nil {
		s.finishInit()
		return
	}

	type load struct {
		node *scene.Node
		text string
		icon bool
	}
	var loads []load
	for _, item := range s.items {
		if item.Label != "" {
			loads = append(loads, load{node: item.label, text: item.Label})
		}
		if item.IconRef != "" {
			loads = append(loads, load{node: item.icon, text: item.IconRef, icon: true})
		}
	}
	if len(loads) == 0 {
		s.finishInit()
		return
	}

	s.mu.Lock()
	s.pendingLoads = len(loads)
	s.mu.Unlock()

	for _, l := range loads {
		done := s.assetDone(l.node, l.text)
		if l.icon {
			s.cfg.Loader.LoadIcon(l.text, done)
		} else {
			s.cfg.Loader.LoadLabel(l.text, done)
		}
	}
}

// assetDone returns the completion callback for one asset load. It may
// run from any goroutine. Failed loads keep the placeholder: degraded
// visuals are never fatal.
func (s *Submenu) assetDone(node *scene.Node, ref string) func(scene.Geometry, error) {
	return func(g scene.Geometry, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		switch {
		case err != nil:
			s.degradedInit = true
			s.log.Warn("submenu: asset load failed, keeping placeholder",
				zap.String("ref", ref), zap.Error(err))
		case s.disposed || s.disposing:
			// The ring is gone; free the late asset instead of
			// attaching it to a disposed node.
			if g != nil {
				_ = g.Dispose()
			}
		case g != nil:
			node.Geometry = g
		}

		s.pendingLoads--
		if s.pendingLoads == 0 && !s.initialized {
			s.initialized = true
			close(s.ready)
		}
	}
}

func (s *Submenu) finishInit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		s.initialized = true
		close(s.ready)
	}
}

// Node returns the submenu's root scene node.
func (s *Submenu) Node() *scene.Node { return s.root }

// ParentItem returns the carousel item this submenu was spawned from.
func (s *Submenu) ParentItem() *scene.Node { return s.parentItem }

// Items returns a copy of the item list.
func (s *Submenu) Items() []*Item {
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of items.
func (s *Submenu) Len() int { return len(s.items) }

// CurrentIndex returns the selected, front-facing item index.
func (s *Submenu) CurrentIndex() int { return s.currentIndex }

// HighlightedIndex returns the continuously recomputed highlight, which
// tracks the front of the ring during scrolls.
func (s *Submenu) HighlightedIndex() int { return s.highlight }

// TargetRotation returns the rotation the ring is animating toward.
func (s *Submenu) TargetRotation() float64 { return s.targetRotation }

// Guard exposes the submenu's guard, e.g. for supervisor registration.
func (s *Submenu) Guard() *guard.Guard { return s.guard }

// Preview returns the current floating preview, or nil.
func (s *Submenu) Preview() *FloatingPreview { return s.preview }

// Ready is closed once all asset loads have settled (successfully or
// not). A submenu with no loader is ready immediately.
func (s *Submenu) Ready() <-chan struct{} { return s.ready }

// Initialized reports whether asset loading has settled.
func (s *Submenu) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// InitDegraded reports whether any asset failed to load.
func (s *Submenu) InitDegraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degradedInit
}

// Disposed reports whether teardown has completed.
func (s *Submenu) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// BeingDisposed reports whether teardown is in progress or done.
func (s *Submenu) BeingDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposing || s.disposed
}

// Show animates the ring from hidden to full scale and opacity. The
// returned future resolves on animation completion, or degraded after
// the transition timeout if the driver stalls: a submenu with partial
// visuals beats one that never appears. Contention with another
// transition resolves immediately with guard.ErrBusy.
func (s *Submenu) Show() *Future {
	return s.fade(1, 1)
}

// Hide is the reverse of Show, with the same timeout policy.
func (s *Submenu) Hide() *Future {
	return s.fade(0, 0)
}

func (s *Submenu) fade(scale, opacity float64) *Future {
	if s.BeingDisposed() {
		return resolvedFuture(ErrDisposed)
	}
	if !s.guard.TryAcquire(guard.LockTransitioning) {
		s.log.Debug("submenu: transition rejected", zap.Stringer("held", s.guard.State()))
		return resolvedFuture(guard.ErrBusy)
	}

	fut := newFuture()
	s.eng.Animate(s.root, tween.Values{"scale": scale, "opacity": opacity}, tween.Config{
		Duration: s.cfg.ShowDuration,
		Ease:     s.cfg.Ease,
		OnComplete: func() {
			// A deadline that already resolved this future also released
			// the lock; a later transition may hold it now.
			if fut.complete(nil, false) {
				s.guard.Release(guard.LockTransitioning)
			}
		},
	})
	s.watchDeadline(fut, s.cfg.TransitionTimeout, func() {
		s.log.Warn("submenu: transition stalled, resolving anyway")
		s.guard.Release(guard.LockTransitioning)
	})
	return fut
}

// SelectItem rotates the ring so the given item faces front. The index
// is validated before any state changes: out-of-range indexes return an
// IndexError and mutate nothing. Contention returns guard.ErrBusy.
// While the selection runs, the highlight is pinned to the target index
// for the whole cycle and released with the lock. With createPreview,
// the completion path swaps in a floating preview for the new index.
func (s *Submenu) SelectItem(index int, animate, createPreview bool) (*Future, error) {
	if s.BeingDisposed() {
		return nil, ErrDisposed
	}
	if index < 0 || index >= len(s.items) {
		return nil, &IndexError{Index: index, Count: len(s.items)}
	}
	if !s.guard.TryAcquire(guard.LockSelecting) {
		return nil, guard.ErrBusy
	}

	// A selection admitted over a passive scroll takes the ring over.
	s.eng.KillTweensOf(s.root)

	s.guard.PinIndex(index)
	s.guard.SetIgnoreHighlight(true)
	s.guard.SetRotationLocked(true)

	rot := s.root.Rotation.Y
	target := rot + math3d.ShortestArc(rot, math3d.FrontRotation(s.items[index].Angle))

	fut := newFuture()
	finish := func() {
		if !fut.complete(nil, false) {
			return
		}
		s.currentIndex = index
		s.highlight = index
		s.releaseSelection()
		s.updateItemEmphasis()
		if createPreview {
			s.swapPreview(index)
		}
		s.cfg.Events.itemSelected(index, s.items[index].LinkedID)
	}

	s.targetRotation = target
	if !animate {
		s.root.Rotation.Y = target
		finish()
		return fut, nil
	}

	s.eng.Animate(s.root, tween.Values{"rotation.y": target}, tween.Config{
		Duration:   s.cfg.SelectDuration,
		Ease:       s.cfg.Ease,
		OnUpdate:   func(tween.Values) { s.refreshHighlight() },
		OnComplete: finish,
	})
	s.watchDeadline(fut, s.cfg.TransitionTimeout, func() {
		s.log.Warn("submenu: selection stalled, releasing locks", zap.Int("index", index))
		s.releaseSelection()
	})
	return fut, nil
}

func (s *Submenu) releaseSelection() {
	s.guard.UnpinIndex()
	s.guard.SetIgnoreHighlight(false)
	s.guard.SetRotationLocked(false)
	s.guard.Release(guard.LockSelecting)
}

// Scroll nudges the target rotation by delta item-steps and animates
// toward it, retargeting any scroll already in flight. Scrolls are
// rejected while a selection or transition holds the ring.
func (s *Submenu) Scroll(delta float64) error {
	if s.BeingDisposed() {
		return ErrDisposed
	}
	if s.guard.RotationLocked() {
		return guard.ErrBusy
	}
	switch s.guard.State() {
	case guard.StateIdle:
		if !s.guard.TryAcquire(guard.LockAnimating) {
			return guard.ErrBusy
		}
	case guard.StateAnimating:
		// Retarget the in-flight scroll. Continued input keeps the
		// watchdog at bay.
		s.guard.Extend()
	default:
		return guard.ErrBusy
	}

	step := math3d.TwoPi / float64(len(s.items))
	s.targetRotation += delta * step

	s.eng.KillTweensOf(s.root)
	s.eng.Animate(s.root, tween.Values{"rotation.y": s.targetRotation}, tween.Config{
		Duration: s.cfg.SelectDuration,
		Ease:     tween.QuadOut,
		OnUpdate: func(tween.Values) { s.refreshHighlight() },
		OnComplete: func() {
			s.currentIndex = s.highlight
			s.guard.Release(guard.LockAnimating)
		},
	})
	return nil
}

// HandleItemClick routes a raycast item hit to a full selection with
// preview. Contending clicks are absorbed, not queued.
func (s *Submenu) HandleItemClick(index int) {
	if _, err := s.SelectItem(index, true, true); err != nil {
		if errors.Is(err, guard.ErrBusy) {
			s.log.Debug("submenu: click absorbed", zap.Int("index", index))
			return
		}
		s.log.Warn("submenu: click rejected", zap.Int("index", index), zap.Error(err))
	}
}

// refreshHighlight recomputes which item counts as front-facing. A
// pinned index wins; otherwise hover recomputation may be suppressed by
// the guard during scripted moves.
func (s *Submenu) refreshHighlight() {
	if idx, ok := s.guard.PinnedIndex(); ok {
		s.highlight = idx
	} else if !s.guard.IgnoreHighlight() {
		s.highlight = math3d.NearestIndex(s.root.Rotation.Y, len(s.items))
	}
	s.updateItemEmphasis()
}

// updateItemEmphasis scales the highlighted item up slightly.
func (s *Submenu) updateItemEmphasis() {
	for i, item := range s.items {
		if i == s.highlight {
			item.Node.Scale = 1.15
		} else {
			item.Node.Scale = 1
		}
	}
}

func (s *Submenu) swapPreview(index int) {
	if s.preview != nil {
		s.preview.Dispose()
		s.preview = nil
	}
	s.preview = newFloatingPreview(s.eng, s.root, s.items[index], s.cfg.FPS)
}

func (s *Submenu) watchDeadline(fut *Future, timeout time.Duration, onTimeout func()) {
	s.watches = append(s.watches, deadlineWatch{
		fut:       fut,
		deadline:  s.cfg.Clock.Now().Add(timeout),
		onTimeout: onTimeout,
	})
}

// Update runs once per frame: watchdog repair, pending-future deadline
// checks, and preview motion.
func (s *Submenu) Update(now time.Time) {
	if s.BeingDisposed() {
		return
	}
	s.guard.CheckAndAutoRepair(now)
	s.watches = sweepWatches(s.watches, now)

	if s.preview != nil {
		s.preview.Update()
	}
}

// Dispose tears the submenu down. Idempotent; safe to call mid-
// animation. Teardown order is delegated to scene.DisposeSubtree so
// tweens are dead before geometry is freed. Pending futures resolve
// with ErrDisposed so no caller waits on a dead ring, and internal
// references are broken to release the parent item and preview.
func (s *Submenu) Dispose() {
	s.mu.Lock()
	if s.disposed || s.disposing {
		s.mu.Unlock()
		return
	}
	s.disposing = true
	s.mu.Unlock()

	s.guard.TryAcquire(guard.LockDisposing)

	if s.preview != nil {
		s.preview.Dispose()
		s.preview = nil
	}

	if err := scene.DisposeSubtree(s.eng, s.root); err != nil {
		s.log.Warn("submenu: disposal errors", zap.Error(err))
	}

	for _, w := range s.watches {
		w.fut.complete(ErrDisposed, true)
	}
	s.watches = nil
	s.parentItem = nil
	s.items = nil
	s.closeBtn = nil

	s.mu.Lock()
	s.disposed = true
	s.mu.Unlock()
}
