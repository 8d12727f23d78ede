package math

import "github.com/chewxy/math32"

// Euler holds XYZ Euler angles in radians (X applied first).
type Euler struct {
	X, Y, Z float32
}

// Compatible returns the Euler representation of e that is closest to
// prev. It considers both e itself and the flipped representation of
// the same rotation (each axis offset by pi), unwinding every axis by
// whole turns, and picks the candidate with the smaller total angular
// distance to prev. This keeps sampled rotation curves continuous
// across the ±pi branch boundary.
func (e Euler) Compatible(prev Euler) Euler {
	a := Euler{
		X: unwind(e.X, prev.X),
		Y: unwind(e.Y, prev.Y),
		Z: unwind(e.Z, prev.Z),
	}
	// Flipped representation of the same rotation.
	flipped := Euler{
		X: e.X + math32.Pi,
		Y: math32.Pi - e.Y,
		Z: e.Z + math32.Pi,
	}
	b := Euler{
		X: unwind(flipped.X, prev.X),
		Y: unwind(flipped.Y, prev.Y),
		Z: unwind(flipped.Z, prev.Z),
	}
	if distanceTo(b, prev) < distanceTo(a, prev) {
		return b
	}
	return a
}

// unwind shifts angle by whole turns until it is within half a turn of
// reference.
func unwind(angle, reference float32) float32 {
	for angle-reference > math32.Pi {
		angle -= 2 * math32.Pi
	}
	for reference-angle > math32.Pi {
		angle += 2 * math32.Pi
	}
	return angle
}

func distanceTo(a, b Euler) float32 {
	return math32.Abs(a.X-b.X) + math32.Abs(a.Y-b.Y) + math32.Abs(a.Z-b.Z)
}
