package math3d

import "math"

// RotatedX returns the vector rotated around the X axis by angle radians.
func (a Vec3) RotatedX(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{a.X, a.Y*c - a.Z*s, a.Y*s + a.Z*c}
}

// RotatedY returns the vector rotated around the Y axis by angle radians.
func (a Vec3) RotatedY(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{a.X*c + a.Z*s, a.Y, -a.X*s + a.Z*c}
}

// RotatedZ returns the vector rotated around the Z axis by angle radians.
func (a Vec3) RotatedZ(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{a.X*c - a.Y*s, a.X*s + a.Y*c, a.Z}
}
