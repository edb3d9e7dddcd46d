// Package tween provides a frame-driven interpolation scheduler. The
// engine is handed mutation targets and completion callbacks; the host
// advances it once per animation frame. All methods are meant to be
// called from that single frame loop.
package tween

import (
	"time"

	"go.uber.org/zap"
)

// Values maps property names to numeric values.
type Values map[string]float64

// Animatable is anything the engine can interpolate named numeric
// properties on. Scene nodes implement it for properties such as
// "rotation.y", "scale" and "opacity".
type Animatable interface {
	// Prop returns the current value of a named property, and whether
	// the target has such a property.
	Prop(name string) (float64, bool)
	// SetProp sets a named property. Unknown names are ignored.
	SetProp(name string, value float64)
}

// Config controls a single tween.
type Config struct {
	Duration time.Duration
	Ease     Ease // defaults to CubicOut
	// OnUpdate is called after each step with the values just applied.
	OnUpdate func(Values)
	// OnComplete is called exactly once when the tween reaches its end.
	// It is never called for killed tweens.
	OnComplete func()
}

// Tween is one in-flight interpolation. It is created by Engine.Animate
// and owned by the engine until it completes or is killed.
type Tween struct {
	target   Animatable
	from, to Values
	elapsed  time.Duration
	duration time.Duration
	ease     Ease
	onUpdate func(Values)
	onDone   func()
	killed   bool
	done     bool
}

// Active reports whether the tween is still running.
func (t *Tween) Active() bool { return !t.done && !t.killed }

// Kill stops the tween without firing its completion callback. The
// target keeps whatever values were last applied.
func (t *Tween) Kill() { t.killed = true }

// Engine schedules tweens. It performs no work of its own between
// Update calls.
type Engine struct {
	tweens []*Tween
	log    *zap.Logger

	// adds arriving from an OnUpdate callback while the update loop is
	// iterating are staged here and scheduled after the pass.
	updating bool
	pending  []*Tween
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Animate starts interpolating the named properties of target toward the
// values in to. Start values are captured immediately. Properties the
// target does not expose are dropped with a debug log. A non-positive
// duration applies the end values at once and fires OnComplete before
// returning.
func (e *Engine) Animate(target Animatable, to Values, cfg Config) *Tween {
	from := make(Values, len(to))
	end := make(Values, len(to))
	for name, v := range to {
		cur, ok := target.Prop(name)
		if !ok {
			e.log.Debug("tween: target has no property", zap.String("prop", name))
			continue
		}
		from[name] = cur
		end[name] = v
	}

	t := &Tween{
		target:   target,
		from:     from,
		to:       end,
		duration: cfg.Duration,
		ease:     cfg.Ease,
		onUpdate: cfg.OnUpdate,
		onDone:   cfg.OnComplete,
	}
	if t.ease == nil {
		t.ease = CubicOut
	}

	if cfg.Duration <= 0 {
		t.apply(1)
		t.done = true
		if t.onUpdate != nil {
			t.onUpdate(end)
		}
		if t.onDone != nil {
			t.onDone()
		}
		return t
	}

	if e.updating {
		e.pending = append(e.pending, t)
	} else {
		e.tweens = append(e.tweens, t)
	}
	return t
}

// KillTweensOf stops every tween targeting the given object without
// firing completion callbacks. Returns the number of tweens killed.
func (e *Engine) KillTweensOf(target Animatable) int {
	n := 0
	for _, t := range e.tweens {
		if t.target == target && t.Active() {
			t.killed = true
			n++
		}
	}
	for _, t := range e.pending {
		if t.target == target && t.Active() {
			t.killed = true
			n++
		}
	}
	return n
}

// Active returns the number of running tweens.
func (e *Engine) Active() int {
	n := 0
	for _, t := range e.tweens {
		if t.Active() {
			n++
		}
	}
	for _, t := range e.pending {
		if t.Active() {
			n++
		}
	}
	return n
}

// Update advances all tweens by dt. Completed tweens are removed from
// the schedule before their completion callbacks run, so a callback may
// start a new tween on the same target.
func (e *Engine) Update(dt time.Duration) {
	if len(e.tweens) == 0 {
		return
	}

	var finished []*Tween
	e.updating = true
	survivors := e.tweens[:0]
	for _, t := range e.tweens {
		if t.killed || t.done {
			continue
		}
		t.elapsed += dt
		f := float64(t.elapsed) / float64(t.duration)
		if f >= 1 {
			t.apply(1)
			t.done = true
			finished = append(finished, t)
			continue
		}
		t.apply(t.ease(f))
		if t.onUpdate != nil {
			t.onUpdate(t.current())
		}
		if t.killed {
			// OnUpdate killed the tween; drop it.
			continue
		}
		survivors = append(survivors, t)
	}
	e.updating = false
	e.tweens = append(survivors, e.pending...)
	e.pending = nil

	for _, t := range finished {
		if t.onUpdate != nil {
			t.onUpdate(t.current())
		}
		if t.onDone != nil {
			t.onDone()
		}
	}
}

// apply writes the interpolated values at eased factor f to the target.
func (t *Tween) apply(f float64) {
	for name, end := range t.to {
		start := t.from[name]
		t.target.SetProp(name, start+(end-start)*f)
	}
}

// current reads back the values last applied to the target.
func (t *Tween) current() Values {
	vals := make(Values, len(t.to))
	for name := range t.to {
		if v, ok := t.target.Prop(name); ok {
			vals[name] = v
		}
	}
	return vals
}
