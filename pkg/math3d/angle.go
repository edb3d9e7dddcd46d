package math3d

import "math"

// TwoPi is one full turn in radians.
const TwoPi = 2 * math.Pi

// FrontAngle is the reference direction an item rotated to the "front"
// of a ring faces (+Y on the ring plane, i.e. toward the viewer).
const FrontAngle = math.Pi / 2

// WrapAngle normalizes an angle to the half-open interval (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a > math.Pi {
		a -= TwoPi
	} else if a <= -math.Pi {
		a += TwoPi
	}
	return a
}

// ShortestArc returns the smallest signed delta that rotates from one
// angle to another. The result is in (-π, π].
func ShortestArc(from, to float64) float64 {
	return WrapAngle(to - from)
}

// RingAngle returns the placement angle of item i on a ring of n evenly
// spaced items, starting at angle 0 and proceeding counter-clockwise.
func RingAngle(i, n int) float64 {
	if n <= 0 {
		return 0
	}
	return TwoPi / float64(n) * float64(i)
}

// FrontRotation returns the ring rotation that brings the item placed at
// the given angle to the front-facing reference direction.
func FrontRotation(itemAngle float64) float64 {
	return -itemAngle + FrontAngle
}

// RingPosition returns the 3D position of an item placed at the given
// angle on a ring of the given radius in the XZ plane.
func RingPosition(angle, radius float64) Vec3 {
	return V3(math.Cos(angle)*radius, 0, math.Sin(angle)*radius)
}

// NearestIndex returns the index of the item closest to the front for the
// given ring rotation, on a ring of n evenly spaced items.
func NearestIndex(rotation float64, n int) int {
	if n <= 0 {
		return 0
	}
	best := 0
	bestDist := math.Inf(1)
	for i := 0; i < n; i++ {
		d := math.Abs(ShortestArc(rotation, FrontRotation(RingAngle(i, n))))
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
