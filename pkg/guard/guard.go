// Package guard serializes conflicting operations on one ring. The
// original multi-flag lock set is modeled as an explicit state machine
// with a transition table, so two flags can never disagree, plus a
// watchdog that force-clears state stuck beyond a maximum hold time.
package guard

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrBusy is returned when a lock cannot be acquired because a
// conflicting operation is in flight. It is the expected outcome of
// rapid repeated input and should be absorbed, not surfaced.
var ErrBusy = errors.New("guard: conflicting operation in progress")

// State is the guard's primary state.
type State int

const (
	// StateIdle admits any operation.
	StateIdle State = iota
	// StateAnimating: a rotation/scale/opacity tween is in flight.
	StateAnimating
	// StateSelecting: a selection owns exclusive rights to the ring.
	StateSelecting
	// StateTransitioning: a higher-level open/close transition is in flight.
	StateTransitioning
	// StateDisposing: the ring is being torn down; terminal.
	StateDisposing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnimating:
		return "animating"
	case StateSelecting:
		return "selecting"
	case StateTransitioning:
		return "transitioning"
	case StateDisposing:
		return "disposing"
	}
	return "unknown"
}

// Lock names an acquirable operation class.
type Lock int

const (
	// LockAnimating guards passive tweens such as scroll rotation.
	LockAnimating Lock = iota
	// LockSelecting guards an exclusive selection cycle.
	LockSelecting
	// LockTransitioning guards show/hide/open/close transitions.
	LockTransitioning
	// LockDisposing guards teardown; it preempts everything.
	LockDisposing
)

func (l Lock) String() string {
	return l.state().String()
}

func (l Lock) state() State {
	switch l {
	case LockAnimating:
		return StateAnimating
	case LockSelecting:
		return StateSelecting
	case LockTransitioning:
		return StateTransitioning
	default:
		return StateDisposing
	}
}

// canEnter is the transition table. A selection may interrupt a passive
// scroll animation (the caller kills the scroll tween), but selection
// and transition are mutually reinforcing: neither admits the other.
// Disposal preempts everything and is terminal until ForceIdle.
func canEnter(from, to State) bool {
	if to == StateDisposing {
		return from != StateDisposing
	}
	switch from {
	case StateIdle:
		return true
	case StateAnimating:
		return to == StateSelecting
	default:
		return false
	}
}

// DefaultMaxHold bounds how long any non-idle state may persist before
// the watchdog force-clears it.
const DefaultMaxHold = 5 * time.Second

// Config configures a Guard.
type Config struct {
	// MaxHold is the watchdog timeout; DefaultMaxHold when zero.
	MaxHold time.Duration
	Clock   Clock
	Logger  *zap.Logger
}

// Guard is the lock-holding object for one ring. All methods are safe
// for concurrent use; the supervisor's repair goroutine shares it with
// the frame loop.
type Guard struct {
	mu      sync.Mutex
	state   State
	since   time.Time // entered the current non-idle state
	maxHold time.Duration
	clock   Clock
	log     *zap.Logger

	pinnedIndex     int
	pinned          bool
	rotationLocked  bool
	ignoreHighlight bool
}

// New creates a guard in the idle state.
func New(cfg Config) *Guard {
	if cfg.MaxHold <= 0 {
		cfg.MaxHold = DefaultMaxHold
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Guard{
		state:   StateIdle,
		maxHold: cfg.MaxHold,
		clock:   cfg.Clock,
		log:     cfg.Logger,
	}
}

// State returns the current primary state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Idle reports whether no operation holds the guard.
func (g *Guard) Idle() bool {
	return g.State() == StateIdle
}

// TryAcquire attempts to enter the state for the named lock. It has no
// side effects on failure. A stuck state past the watchdog deadline is
// repaired before the attempt, so a swallowed completion callback can
// never lock the ring out forever.
func (g *Guard) TryAcquire(l Lock) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	g.repairLocked(now)

	to := l.state()
	if !canEnter(g.state, to) {
		g.log.Debug("guard: acquisition rejected",
			zap.Stringer("held", g.state),
			zap.Stringer("requested", to))
		return false
	}
	if g.state == StateIdle {
		g.since = now
	}
	g.state = to
	return true
}

// Release clears the named lock if it is the one held. Releasing a lock
// that is not held is a no-op, not an error.
func (g *Guard) Release(l Lock) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == l.state() {
		g.state = StateIdle
	}
}

// Extend restarts the watchdog clock for the held state. A long-lived
// hold that is still making progress, such as a scroll retargeting on
// every wheel tick, calls this so sustained activity is not mistaken
// for a dropped completion callback. No-op while idle.
func (g *Guard) Extend() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		g.since = g.clock.Now()
	}
}

// With acquires the lock, runs fn, and releases on every path including
// panics. It returns ErrBusy without side effects when acquisition
// fails, so callers can silently drop a blocked operation.
func (g *Guard) With(l Lock, fn func() error) error {
	if !g.TryAcquire(l) {
		return ErrBusy
	}
	defer g.Release(l)
	return fn()
}

// CheckAndAutoRepair force-clears all guard state if it has been held
// longer than the maximum hold time. Returns true if a repair happened.
// This is the system's last line of defense; its firing indicates a
// completion callback never ran.
func (g *Guard) CheckAndAutoRepair(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.repairLocked(now)
}

func (g *Guard) repairLocked(now time.Time) bool {
	if g.state == StateIdle {
		return false
	}
	held := now.Sub(g.since)
	if held <= g.maxHold {
		return false
	}
	g.log.Warn("guard: state stuck past deadline, force-clearing",
		zap.Stringer("state", g.state),
		zap.Duration("held", held),
		zap.Duration("max", g.maxHold))
	g.forceIdleLocked()
	return true
}

// ForceIdle unconditionally clears the primary state and every
// auxiliary flag.
func (g *Guard) ForceIdle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forceIdleLocked()
}

func (g *Guard) forceIdleLocked() {
	g.state = StateIdle
	g.pinned = false
	g.pinnedIndex = 0
	g.rotationLocked = false
	g.ignoreHighlight = false
}

// PinIndex pins highlight recalculation to the given index. The pin is
// auxiliary: it never blocks lock acquisition, it only changes how
// highlight code interprets the current index.
func (g *Guard) PinIndex(i int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pinnedIndex = i
	g.pinned = true
}

// UnpinIndex clears the highlight pin.
func (g *Guard) UnpinIndex() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pinned = false
	g.pinnedIndex = 0
}

// PinnedIndex returns the pinned highlight index, if any.
func (g *Guard) PinnedIndex() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pinnedIndex, g.pinned
}

// SetRotationLocked prevents external code from overwriting the ring's
// target rotation.
func (g *Guard) SetRotationLocked(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotationLocked = v
}

// RotationLocked reports whether the target rotation is locked.
func (g *Guard) RotationLocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotationLocked
}

// SetIgnoreHighlight suppresses hover-driven highlight changes during a
// scripted selection.
func (g *Guard) SetIgnoreHighlight(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ignoreHighlight = v
}

// IgnoreHighlight reports whether hover highlighting is suppressed.
func (g *Guard) IgnoreHighlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ignoreHighlight
}
