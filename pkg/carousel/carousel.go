package carousel

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/orbitmenu/orbit/pkg/guard"
	"github.com/orbitmenu/orbit/pkg/math3d"
	"github.com/orbitmenu/orbit/pkg/scene"
	"github.com/orbitmenu/orbit/pkg/tween"
)

// Entry is one primary carousel item plus the submenu it spawns when
// selected. An empty Submenu slice means the item is a leaf.
type Entry struct {
	ItemDescriptor
	Submenu []ItemDescriptor
}

// Carousel is the primary ring. Wheel input feeds a spring-damped
// momentum model that snaps to the nearest item on settle; selecting an
// item rotates it to front and, for non-leaf entries, opens its submenu
// through the Manager.
type Carousel struct {
	cfg Config
	log *zap.Logger
	eng *tween.Engine

	guard   *guard.Guard
	manager *Manager

	root    *scene.Node
	items   []*Item
	entries []Entry

	currentIndex   int
	highlight      int
	targetRotation float64

	momentum  *tween.Momentum
	scrolling bool
	snapping  bool

	watches []deadlineWatch

	disposed bool
}

// New builds the primary ring under world and wires it to mgr for
// submenu lifecycle. Returns ErrEmptyItems for an empty entry list.
func New(eng *tween.Engine, world *scene.Node, mgr *Manager, entries []Entry, cfg Config) (*Carousel, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyItems
	}
	cfg = cfg.withDefaults()

	root := scene.NewNode("carousel")
	world.Add(root)

	c := &Carousel{
		cfg:     cfg,
		log:     cfg.Logger,
		eng:     eng,
		manager: mgr,
		root:    root,
		entries: entries,
		guard: guard.New(guard.Config{
			MaxHold: cfg.MaxHold,
			Clock:   cfg.Clock,
			Logger:  cfg.Logger,
		}),
	}

	n := len(entries)
	for i, e := range entries {
		item := buildItem(e.ItemDescriptor, i, n, cfg.Radius, false)
		root.Add(item.Node)
		c.items = append(c.items, item)
	}

	c.targetRotation = math3d.FrontRotation(c.items[0].Angle)
	root.Rotation.Y = c.targetRotation
	c.momentum = tween.NewMomentum(cfg.FPS)
	c.momentum.Position = c.targetRotation
	c.updateItemEmphasis()
	c.loadAssets()
	return c, nil
}

// loadAssets requests label and icon geometry for every entry. The
// primary ring is visible from the start, so loads are fire-and-forget:
// failures keep the placeholder.
func (c *Carousel) loadAssets() {
	if c.cfg.Loader == nil {
		return
	}
	for _, item := range c.items {
		if item.Label != "" {
			c.cfg.Loader.LoadLabel(item.Label, c.attachAsset(item.label, item.Label))
		}
		if item.IconRef != "" {
			c.cfg.Loader.LoadIcon(item.IconRef, c.attachAsset(item.icon, item.IconRef))
		}
	}
}

func (c *Carousel) attachAsset(node *scene.Node, ref string) func(scene.Geometry, error) {
	return func(g scene.Geometry, err error) {
		switch {
		case err != nil:
			c.log.Warn("carousel: asset load failed, keeping placeholder",
				zap.String("ref", ref), zap.Error(err))
		case g == nil:
		case node.Disposed():
			_ = g.Dispose()
		default:
			node.Geometry = g
		}
	}
}

// Node returns the ring's root scene node.
func (c *Carousel) Node() *scene.Node { return c.root }

// Guard exposes the ring's guard for supervisor registration.
func (c *Carousel) Guard() *guard.Guard { return c.guard }

// CurrentIndex returns the selected, front-facing entry index.
func (c *Carousel) CurrentIndex() int { return c.currentIndex }

// HighlightedIndex returns the entry currently nearest to front.
func (c *Carousel) HighlightedIndex() int { return c.highlight }

// Len returns the number of entries.
func (c *Carousel) Len() int { return len(c.entries) }

// TargetRotation returns the rotation the ring is heading toward.
func (c *Carousel) TargetRotation() float64 { return c.targetRotation }

// SelectItem rotates entry index to front. Validation happens before
// any state change; contention returns guard.ErrBusy. On completion a
// non-leaf entry opens its submenu; the returned future resolves once
// the rotation lands, independent of the submenu open. A stalled driver
// resolves the future degraded at the transition timeout and frees the
// ring.
func (c *Carousel) SelectItem(index int, animate bool) (*Future, error) {
	if c.disposed {
		return nil, ErrDisposed
	}
	if index < 0 || index >= len(c.items) {
		return nil, &IndexError{Index: index, Count: len(c.items)}
	}
	if !c.guard.TryAcquire(guard.LockSelecting) {
		return nil, guard.ErrBusy
	}

	c.eng.KillTweensOf(c.root)
	c.scrolling = false
	c.snapping = false
	c.momentum.Stop()

	c.guard.PinIndex(index)
	c.guard.SetIgnoreHighlight(true)

	rot := c.root.Rotation.Y
	target := rot + math3d.ShortestArc(rot, math3d.FrontRotation(c.items[index].Angle))

	fut := newFuture()
	finish := func() {
		if !fut.complete(nil, false) {
			return
		}
		c.currentIndex = index
		c.highlight = index
		c.momentum.Position = c.root.Rotation.Y
		c.releaseSelection()
		c.updateItemEmphasis()
		c.cfg.Events.itemSelected(index, c.items[index].LinkedID)
		c.openSubmenuFor(index)
	}

	c.targetRotation = target
	if !animate {
		c.root.Rotation.Y = target
		finish()
		return fut, nil
	}

	c.eng.Animate(c.root, tween.Values{"rotation.y": target}, tween.Config{
		Duration:   c.cfg.SelectDuration,
		Ease:       c.cfg.Ease,
		OnUpdate:   func(tween.Values) { c.refreshHighlight() },
		OnComplete: finish,
	})
	c.watchDeadline(fut, c.cfg.TransitionTimeout, func() {
		c.log.Warn("carousel: selection stalled, releasing locks", zap.Int("index", index))
		c.releaseSelection()
	})
	return fut, nil
}

func (c *Carousel) releaseSelection() {
	c.guard.UnpinIndex()
	c.guard.SetIgnoreHighlight(false)
	c.guard.Release(guard.LockSelecting)
}

func (c *Carousel) watchDeadline(fut *Future, timeout time.Duration, onTimeout func()) {
	c.watches = append(c.watches, deadlineWatch{
		fut:       fut,
		deadline:  c.cfg.Clock.Now().Add(timeout),
		onTimeout: onTimeout,
	})
}

// openSubmenuFor opens the submenu of a non-leaf entry. Contention is
// logged and dropped: the selection already landed, reopening is a
// click away.
func (c *Carousel) openSubmenuFor(index int) {
	descs := c.entries[index].Submenu
	if len(descs) == 0 || c.manager == nil {
		return
	}
	fut := c.manager.OpenSubmenuFor(c.items[index].Node, descs)
	if fut.Settled() && fut.Err() != nil {
		c.log.Debug("carousel: submenu open rejected",
			zap.Int("index", index), zap.Error(fut.Err()))
	}
}

// SelectNext moves the selection one entry clockwise.
func (c *Carousel) SelectNext() { c.step(1) }

// SelectPrev moves the selection one entry counterclockwise.
func (c *Carousel) SelectPrev() { c.step(-1) }

func (c *Carousel) step(d int) {
	n := len(c.items)
	if n == 0 {
		return
	}
	next := ((c.currentIndex+d)%n + n) % n
	if _, err := c.SelectItem(next, true); err != nil && !errors.Is(err, guard.ErrBusy) {
		c.log.Warn("carousel: step failed", zap.Int("index", next), zap.Error(err))
	}
}

// Scroll feeds wheel delta into the momentum model. The ring free-spins
// under spring damping and snaps to the nearest entry when it settles.
// Rejected while a selection or disposal holds the ring.
func (c *Carousel) Scroll(delta float64) error {
	if c.disposed {
		return ErrDisposed
	}
	switch c.guard.State() {
	case guard.StateIdle:
		if !c.guard.TryAcquire(guard.LockAnimating) {
			return guard.ErrBusy
		}
	case guard.StateAnimating:
		// Continued input keeps the watchdog at bay during a long coast.
		c.guard.Extend()
	default:
		return guard.ErrBusy
	}

	if c.snapping {
		// A new fling aborts the snap tween and resumes free spin.
		c.eng.KillTweensOf(c.root)
		c.snapping = false
	}
	if !c.scrolling {
		c.momentum.Position = c.root.Rotation.Y
		c.scrolling = true
	}
	step := math3d.TwoPi / float64(len(c.items))
	c.momentum.Impulse(delta * step * flingGain)
	return nil
}

// flingGain converts one wheel tick into per-frame angular velocity.
// At 60fps a single tick coasts a bit past one item before the spring
// kills it.
const flingGain = 0.12

// HandleClick routes raycast hits: the active submenu gets first claim,
// then the nearest carousel item hit becomes a selection. Returns true
// when the click was consumed.
func (c *Carousel) HandleClick(hits []scene.Hit) bool {
	if c.disposed {
		return false
	}
	if c.manager != nil && c.manager.RouteInteraction(hits) {
		return true
	}
	for _, h := range hits {
		item := scene.FindAncestor(h.Object, func(n *scene.Node) bool { return n.Markers.CarouselItem })
		if item == nil {
			continue
		}
		if _, err := c.SelectItem(item.Markers.ItemIndex, true); err != nil {
			c.log.Debug("carousel: click absorbed",
				zap.Int("index", item.Markers.ItemIndex), zap.Error(err))
		}
		return true
	}
	return false
}

// Update advances momentum scrolling, pending-future deadline checks
// and the watchdog once per frame.
func (c *Carousel) Update(now time.Time) {
	if c.disposed {
		return
	}
	c.guard.CheckAndAutoRepair(now)
	c.watches = sweepWatches(c.watches, now)

	if c.scrolling {
		c.momentum.Update()
		c.root.Rotation.Y = c.momentum.Position
		c.refreshHighlight()
		if c.momentum.Settled() {
			c.scrolling = false
			c.snapToNearest()
		}
	}
}

// snapToNearest eases the ring onto the item closest to front after a
// fling dies down, then hands the ring back.
func (c *Carousel) snapToNearest() {
	n := len(c.items)
	nearest := math3d.NearestIndex(c.root.Rotation.Y, n)
	rot := c.root.Rotation.Y
	target := rot + math3d.ShortestArc(rot, math3d.FrontRotation(c.items[nearest].Angle))

	c.snapping = true
	c.targetRotation = target
	c.eng.Animate(c.root, tween.Values{"rotation.y": target}, tween.Config{
		Duration: c.cfg.SelectDuration,
		Ease:     c.cfg.Ease,
		OnUpdate: func(tween.Values) { c.refreshHighlight() },
		OnComplete: func() {
			c.snapping = false
			c.currentIndex = nearest
			c.highlight = nearest
			c.momentum.Position = target
			c.guard.Release(guard.LockAnimating)
			c.updateItemEmphasis()
		},
	})
}

func (c *Carousel) refreshHighlight() {
	if idx, ok := c.guard.PinnedIndex(); ok {
		c.highlight = idx
	} else if !c.guard.IgnoreHighlight() {
		c.highlight = math3d.NearestIndex(c.root.Rotation.Y, len(c.items))
	}
	c.updateItemEmphasis()
}

func (c *Carousel) updateItemEmphasis() {
	for i, item := range c.items {
		if i == c.highlight {
			item.Node.Scale = 1.15
		} else {
			item.Node.Scale = 1
		}
	}
}

// Dispose tears down the ring and any open submenu. Idempotent.
func (c *Carousel) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.guard.TryAcquire(guard.LockDisposing)
	if c.manager != nil {
		c.manager.Dispose()
	}
	if err := scene.DisposeSubtree(c.eng, c.root); err != nil {
		c.log.Warn("carousel: disposal errors", zap.Error(err))
	}
	for _, w := range c.watches {
		w.fut.complete(ErrDisposed, true)
	}
	c.watches = nil
	c.items = nil
	c.entries = nil
}
