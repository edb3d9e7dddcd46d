package tween

import "math"

// Ease maps normalized time t in [0,1] to an interpolation factor.
type Ease func(t float64) float64

// Linear is constant-speed interpolation.
func Linear(t float64) float64 { return t }

// QuadIn accelerates from zero.
func QuadIn(t float64) float64 { return t * t }

// QuadOut decelerates to zero.
func QuadOut(t float64) float64 { return t * (2 - t) }

// CubicOut decelerates more sharply than QuadOut.
func CubicOut(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}

// SmoothStep accelerates then decelerates symmetrically.
func SmoothStep(t float64) float64 { return t * t * (3 - 2*t) }

// BackOut overshoots the target slightly before settling.
func BackOut(t float64) float64 {
	const s = 1.70158
	u := t - 1
	return u*u*((s+1)*u+s) + 1
}

// ElasticOut rings past the target with decaying oscillation.
func ElasticOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	const p = 0.3
	return math.Pow(2, -10*t)*math.Sin((t-p/4)*(2*math.Pi)/p) + 1
}
