package math3d

import (
	"math"
	"testing"
)

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{TwoPi, 0},
		{-TwoPi, 0},
		{math.Pi / 4, math.Pi / 4},
		{TwoPi + 0.1, 0.1},
		{-TwoPi - 0.1, -0.1},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); !almostEqual(got, tt.want) {
			t.Errorf("WrapAngle(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestShortestArc(t *testing.T) {
	tests := []struct {
		from, to, want float64
	}{
		{0, math.Pi / 2, math.Pi / 2},
		{math.Pi / 2, 0, -math.Pi / 2},
		// Crossing the ±π seam takes the short way around.
		{3, -3, 2*math.Pi - 6},
		{-3, 3, -(2*math.Pi - 6)},
		{1, 1, 0},
	}
	for _, tt := range tests {
		if got := ShortestArc(tt.from, tt.to); !almostEqual(got, tt.want) {
			t.Errorf("ShortestArc(%f, %f) = %f, want %f", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRingAngle(t *testing.T) {
	// 5 items: spacing is 2π/5.
	step := TwoPi / 5
	for i := 0; i < 5; i++ {
		if got := RingAngle(i, 5); !almostEqual(got, step*float64(i)) {
			t.Errorf("RingAngle(%d, 5) = %f, want %f", i, got, step*float64(i))
		}
	}
	if got := RingAngle(3, 0); got != 0 {
		t.Errorf("RingAngle with n=0 = %f, want 0", got)
	}
}

func TestFrontRotation(t *testing.T) {
	// The item at angle 0 is brought to the front by rotating to π/2.
	if got := FrontRotation(0); !almostEqual(got, math.Pi/2) {
		t.Errorf("FrontRotation(0) = %f, want π/2", got)
	}
	// Item 2 of 5 lands at -(2*2π/5) + π/2.
	angle := RingAngle(2, 5)
	want := -angle + math.Pi/2
	if got := FrontRotation(angle); !almostEqual(got, want) {
		t.Errorf("FrontRotation = %f, want %f", got, want)
	}
}

func TestRingPosition(t *testing.T) {
	p := RingPosition(0, 2)
	if !almostEqual(p.X, 2) || !almostEqual(p.Z, 0) {
		t.Errorf("RingPosition(0, 2) = %v, want {2 0 0}", p)
	}
	p = RingPosition(math.Pi/2, 2)
	if !almostEqual(p.X, 0) || !almostEqual(p.Z, 2) {
		t.Errorf("RingPosition(π/2, 2) = %v, want {0 0 2}", p)
	}
}

func TestNearestIndex(t *testing.T) {
	const n = 5
	for i := 0; i < n; i++ {
		rot := FrontRotation(RingAngle(i, n))
		if got := NearestIndex(rot, n); got != i {
			t.Errorf("NearestIndex(front of %d) = %d", i, got)
		}
		// A small perturbation still resolves to the same item.
		if got := NearestIndex(rot+0.3, n); got != i {
			t.Errorf("NearestIndex(front of %d + 0.3) = %d", i, got)
		}
	}
}
