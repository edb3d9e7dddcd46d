package tween

import "github.com/charmbracelet/harmonica"

// Momentum tracks a scrolled value with inertia: impulses add velocity,
// velocity integrates into position, and a critically damped spring
// decays the velocity back to rest.
type Momentum struct {
	Position float64
	Velocity float64
	spring   harmonica.Spring
	accel    float64 // internal spring velocity, decays Velocity toward 0
}

// NewMomentum creates a momentum accumulator tuned for the given frame
// rate. Frequency 4 with damping 1 gives smooth deceleration without
// overshoot.
func NewMomentum(fps int) *Momentum {
	return &Momentum{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Impulse adds velocity, e.g. from a wheel tick or drag delta.
func (m *Momentum) Impulse(v float64) {
	m.Velocity += v
}

// Update integrates one frame and decays velocity toward zero.
func (m *Momentum) Update() {
	m.Position += m.Velocity
	m.Velocity, m.accel = m.spring.Update(m.Velocity, m.accel, 0)
}

// Settled reports whether the motion has effectively stopped.
func (m *Momentum) Settled() bool {
	const rest = 1e-4
	return m.Velocity < rest && m.Velocity > -rest
}

// Stop zeroes the velocity immediately.
func (m *Momentum) Stop() {
	m.Velocity = 0
	m.accel = 0
}

// SpringValue animates a scalar toward a target with spring physics.
// Underdamped tunings give a bouncy settle, used for preview pop-in.
type SpringValue struct {
	Target   float64
	position float64
	velocity float64
	spring   harmonica.Spring
}

// NewSpringValue creates a spring-driven scalar starting at pos.
func NewSpringValue(fps int, frequency, damping, pos float64) *SpringValue {
	return &SpringValue{
		Target:   pos,
		position: pos,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
	}
}

// Update advances one frame toward Target and returns the new position.
func (s *SpringValue) Update() float64 {
	s.position, s.velocity = s.spring.Update(s.position, s.velocity, s.Target)
	return s.position
}

// Value returns the current position without advancing.
func (s *SpringValue) Value() float64 { return s.position }
