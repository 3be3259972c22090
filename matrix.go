package nae

import "math"

// Matrix is a 2D affine transform stored as the top two rows of a 3x3
// homogeneous matrix:
//
//	| A  B  C |
//	| D  E  F |
//
// which maps a point as
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate returns a translation by (x, y).
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Scale returns a scale by (x, y) around the origin.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, E: y}
}

// Rotate returns a rotation by angle radians around the origin.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{
		A: cos, B: -sin,
		D: sin, E: cos,
	}
}

// Skew returns a shear by the angles kx and ky, in radians.
func Skew(kx, ky float64) Matrix {
	return Matrix{
		A: 1, B: math.Tan(kx),
		D: math.Tan(ky), E: 1,
	}
}

// Multiply returns m * other. Applied to a point, other acts first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint maps p through m.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// TransformVector maps v through the linear part of m.
func (m Matrix) TransformVector(v Point) Point {
	return Point{
		X: m.A*v.X + m.B*v.Y,
		Y: m.D*v.X + m.E*v.Y,
	}
}

// Apply maps (x, y) and narrows the result to float32 vertex coordinates.
func (m Matrix) Apply(x, y float64) (float32, float32) {
	return float32(m.A*x + m.B*y + m.C), float32(m.D*x + m.E*y + m.F)
}

// Determinant returns A*E - B*D.
func (m Matrix) Determinant() float64 {
	return m.A*m.E - m.B*m.D
}

// Invert returns the inverse of m, or identity if m is singular.
func (m Matrix) Invert() Matrix {
	det := m.Determinant()
	if math.Abs(det) < 1e-12 {
		return Identity()
	}
	inv := 1 / det
	return Matrix{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}
}

// MaxScale returns the largest factor by which m stretches a unit vector.
// Shape primitives use it to pick a tessellation density that holds up
// after the transform.
func (m Matrix) MaxScale() float64 {
	// Largest singular value of the linear part.
	a := m.A*m.A + m.D*m.D
	b := m.A*m.B + m.D*m.E
	c := m.B*m.B + m.E*m.E
	tr := (a + c) / 2
	disc := math.Sqrt(math.Max(0, tr*tr-(a*c-b*b)))
	return math.Sqrt(tr + disc)
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// ApproxEqual reports whether every coefficient of m and o is within eps.
func (m Matrix) ApproxEqual(o Matrix, eps float64) bool {
	return math.Abs(m.A-o.A) <= eps && math.Abs(m.B-o.B) <= eps && math.Abs(m.C-o.C) <= eps &&
		math.Abs(m.D-o.D) <= eps && math.Abs(m.E-o.E) <= eps && math.Abs(m.F-o.F) <= eps
}
