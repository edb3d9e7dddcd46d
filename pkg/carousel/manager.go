package carousel

import (
	"time"

	"go.uber.org/zap"

	"github.com/orbitmenu/orbit/pkg/guard"
	"github.com/orbitmenu/orbit/pkg/scene"
	"github.com/orbitmenu/orbit/pkg/tween"
)

// Manager owns submenu lifecycle and enforces the single-active-submenu
// invariant: opening a submenu while another is active first closes and
// disposes the old one, then builds the new one, as one serialized
// operation. All methods run on the host frame loop; pending operations
// advance in Update.
type Manager struct {
	cfg   Config
	log   *zap.Logger
	eng   *tween.Engine
	world *scene.Node
	sup   *guard.Supervisor

	active  *Submenu
	opening bool
	closing bool

	open  *openOp
	close *closeOp
}

// openOp is an in-flight OpenSubmenuFor, advanced one phase per frame:
// close the previous submenu, construct the new one, then wait for show
// and asset readiness under a deadline.
type openOp struct {
	fut        *Future
	parentItem *scene.Node
	descs      []ItemDescriptor

	prev     *Submenu
	prevHide *Future

	sub          *Submenu
	showFut      *Future
	initDeadline time.Time
}

type closeOp struct {
	fut     *Future
	sub     *Submenu
	hideFut *Future
}

// NewManager builds a manager whose submenus attach under world.
func NewManager(eng *tween.Engine, world *scene.Node, cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:   cfg,
		log:   cfg.Logger,
		eng:   eng,
		world: world,
	}
}

// AttachSupervisor registers future submenu guards with sup for
// background stuck-state repair.
func (m *Manager) AttachSupervisor(sup *guard.Supervisor) { m.sup = sup }

// Active returns the current submenu, or nil.
func (m *Manager) Active() *Submenu { return m.active }

// Transitioning reports whether an open or close is in flight.
func (m *Manager) Transitioning() bool { return m.opening || m.closing }

// OpenSubmenuFor opens a submenu for the given parent item. Empty item
// lists fail up front with ErrEmptyItems; a second open or close while
// one is pending resolves with guard.ErrBusy. The future resolves once
// the new submenu is shown and its assets have settled, or degraded
// after the init timeout. The opened submenu is available from the
// future's Submenu method.
func (m *Manager) OpenSubmenuFor(parentItem *scene.Node, descs []ItemDescriptor) *Future {
	if len(descs) == 0 {
		return resolvedFuture(ErrEmptyItems)
	}
	if m.opening || m.closing {
		m.log.Debug("manager: open rejected, transition pending")
		return resolvedFuture(guard.ErrBusy)
	}

	m.opening = true
	op := &openOp{
		fut:        newFuture(),
		parentItem: parentItem,
		descs:      descs,
		prev:       m.active,
	}
	m.active = nil
	m.open = op
	return op.fut
}

// CloseActiveSubmenu hides, disposes, and removes the active submenu.
// With no active submenu it resolves immediately. Disposal errors are
// logged, never surfaced: a close must always leave the manager empty.
func (m *Manager) CloseActiveSubmenu() *Future {
	if m.opening || m.closing {
		m.log.Debug("manager: close rejected, transition pending")
		return resolvedFuture(guard.ErrBusy)
	}
	if m.active == nil {
		return resolvedFuture(nil)
	}

	m.closing = true
	m.close = &closeOp{fut: newFuture(), sub: m.active}
	m.active = nil // handle detaches immediately; the op owns the rest
	return m.close.fut
}

// RouteInteraction routes raycast hits to the active submenu. Close
// buttons take priority over item hits. Returns true when the hit was
// consumed; interactions during open/close transitions are dropped so
// a dying submenu cannot be clicked.
func (m *Manager) RouteInteraction(hits []scene.Hit) bool {
	if m.opening || m.closing || m.active == nil {
		return false
	}
	root := m.active.Node()

	for _, h := range hits {
		btn := scene.FindAncestor(h.Object, func(n *scene.Node) bool { return n.Markers.CloseButton })
		if btn != nil && scene.FindAncestor(btn, func(n *scene.Node) bool { return n == root }) != nil {
			m.CloseActiveSubmenu()
			return true
		}
	}
	for _, h := range hits {
		item := scene.FindAncestor(h.Object, func(n *scene.Node) bool { return n.Markers.SubmenuItem })
		if item != nil && scene.FindAncestor(item, func(n *scene.Node) bool { return n == root }) != nil {
			m.active.HandleItemClick(item.Markers.ItemIndex)
			return true
		}
	}
	return false
}

// Update advances pending open/close operations one phase and ticks the
// active submenu.
func (m *Manager) Update(now time.Time) {
	if m.close != nil {
		m.advanceClose(now)
	}
	if m.open != nil {
		m.advanceOpen(now)
	}
	// Submenus mid-close are ticked by their operation, not here.
	if m.active != nil && !m.active.BeingDisposed() {
		m.active.Update(now)
	}
}

func (m *Manager) advanceClose(now time.Time) {
	op := m.close
	if op.hideFut == nil {
		op.hideFut = op.sub.Hide()
	}
	op.sub.Update(now)
	if !op.hideFut.Settled() {
		return
	}

	parent := op.sub.ParentItem()
	m.teardown(op.sub)
	m.close = nil
	m.closing = false
	m.cfg.Events.submenuClosed(parent)
	op.fut.complete(nil, op.hideFut.Degraded())
}

func (m *Manager) advanceOpen(now time.Time) {
	op := m.open

	// Phase 1: retire the previous submenu.
	if op.prev != nil {
		if op.prevHide == nil {
			op.prevHide = op.prev.Hide()
		}
		op.prev.Update(now)
		if !op.prevHide.Settled() {
			return
		}
		parent := op.prev.ParentItem()
		m.teardown(op.prev)
		op.prev = nil
		m.cfg.Events.submenuClosed(parent)
	}

	// Phase 2: build and show the replacement.
	if op.sub == nil {
		sub, err := NewSubmenu(m.eng, op.parentItem, op.descs, m.cfg)
		if err != nil {
			m.open = nil
			m.opening = false
			op.fut.complete(err, false)
			return
		}
		sub.Node().Position = op.parentItem.WorldPosition()
		m.world.Add(sub.Node())
		if m.sup != nil {
			m.sup.Watch(sub.Guard())
		}
		op.sub = sub
		op.showFut = sub.Show()
		op.initDeadline = m.cfg.Clock.Now().Add(m.cfg.InitTimeout)
		m.active = sub
		return
	}

	// Phase 3: wait for show and asset readiness.
	if !op.showFut.Settled() {
		return
	}
	if !op.sub.Initialized() && now.Before(op.initDeadline) {
		return
	}

	degraded := op.showFut.Degraded() || op.sub.InitDegraded()
	if !op.sub.Initialized() {
		m.log.Warn("manager: submenu assets still loading past deadline, opening degraded")
		degraded = true
	}
	m.open = nil
	m.opening = false
	op.fut.setSubmenu(op.sub)
	m.cfg.Events.submenuOpened(op.sub)
	op.fut.complete(nil, degraded)
}

// teardown disposes a submenu and drops it from supervision.
func (m *Manager) teardown(sub *Submenu) {
	if m.sup != nil {
		m.sup.Unwatch(sub.Guard())
	}
	sub.Dispose()
}

// Dispose force-closes everything without animation, for host shutdown.
func (m *Manager) Dispose() {
	if m.open != nil {
		if m.open.prev != nil {
			m.teardown(m.open.prev)
		}
		if m.open.sub != nil {
			m.teardown(m.open.sub)
		}
		m.open.fut.complete(ErrDisposed, true)
		m.open = nil
	}
	if m.close != nil {
		m.teardown(m.close.sub)
		m.close.fut.complete(ErrDisposed, true)
		m.close = nil
	}
	if m.active != nil {
		m.teardown(m.active)
		m.active = nil
	}
	m.opening = false
	m.closing = false
}
