package math

import "github.com/chewxy/math32"

// Mat4 is a 4x4 matrix in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(t Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		t.X, t.Y, t.Z, 1,
	}
}

// ScaleMat returns a non-uniform scale matrix.
func ScaleMat(s Vec3) Mat4 {
	return Mat4{
		s.X, 0, 0, 0,
		0, s.Y, 0, 0,
		0, 0, s.Z, 0,
		0, 0, 0, 1,
	}
}

// TRS composes translation, rotation and scale into one transform
// (scale applied first, then rotation, then translation).
func TRS(t Vec3, r Quat, s Vec3) Mat4 {
	return Translate(t).Mul(r.ToMat4()).Mul(ScaleMat(s))
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Translation returns the translation column of the matrix.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// ScalePart returns the per-axis scale factors (column lengths of the
// upper-left 3x3).
func (m Mat4) ScalePart() Vec3 {
	return Vec3{
		Vec3{m[0], m[1], m[2]}.Length(),
		Vec3{m[4], m[5], m[6]}.Length(),
		Vec3{m[8], m[9], m[10]}.Length(),
	}
}

// Rotation extracts the rotation component as a quaternion. Scale is
// divided out of the basis columns first.
func (m Mat4) Rotation() Quat {
	s := m.ScalePart()
	if s.X == 0 || s.Y == 0 || s.Z == 0 {
		return QuatIdentity()
	}
	// Normalized 3x3 rotation basis.
	r00, r10, r20 := m[0]/s.X, m[1]/s.X, m[2]/s.X
	r01, r11, r21 := m[4]/s.Y, m[5]/s.Y, m[6]/s.Y
	r02, r12, r22 := m[8]/s.Z, m[9]/s.Z, m[10]/s.Z

	trace := r00 + r11 + r22
	var q Quat
	switch {
	case trace > 0:
		w := math32.Sqrt(1+trace) / 2
		inv4w := 1 / (4 * w)
		q = Quat{
			X: (r21 - r12) * inv4w,
			Y: (r02 - r20) * inv4w,
			Z: (r10 - r01) * inv4w,
			W: w,
		}
	case r00 > r11 && r00 > r22:
		x := math32.Sqrt(1+r00-r11-r22) / 2
		inv4x := 1 / (4 * x)
		q = Quat{
			X: x,
			Y: (r01 + r10) * inv4x,
			Z: (r02 + r20) * inv4x,
			W: (r21 - r12) * inv4x,
		}
	case r11 > r22:
		y := math32.Sqrt(1+r11-r00-r22) / 2
		inv4y := 1 / (4 * y)
		q = Quat{
			X: (r01 + r10) * inv4y,
			Y: y,
			Z: (r12 + r21) * inv4y,
			W: (r02 - r20) * inv4y,
		}
	default:
		z := math32.Sqrt(1+r22-r00-r11) / 2
		inv4z := 1 / (4 * z)
		q = Quat{
			X: (r02 + r20) * inv4z,
			Y: (r12 + r21) * inv4z,
			Z: z,
			W: (r10 - r01) * inv4z,
		}
	}
	return q.Normalize()
}
