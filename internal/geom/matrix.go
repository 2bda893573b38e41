package geom

import "math"

// Matrix2D is a 2D affine transform stored as [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// RotateDegrees returns a rotation matrix. Positive angles turn +x towards +y.
func RotateDegrees(deg float64) Matrix2D {
	rad := deg * math.Pi / 180.0
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// RotateAbout rotates by deg around the point c.
func RotateAbout(deg float64, c Point) Matrix2D {
	return Translate(c.X, c.Y).Multiply(RotateDegrees(deg)).Multiply(Translate(-c.X, -c.Y))
}

// MirrorY reflects across the horizontal line y = y0.
func MirrorY(y0 float64) Matrix2D {
	return Matrix2D{1, 0, 0, -1, 0, 2 * y0}
}

// Multiply returns m * other, which applies other first and then m.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Apply transforms a point.
func (m Matrix2D) Apply(p Point) Point {
	return Point{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// ApplyAll transforms a list of points into a new slice.
func (m Matrix2D) ApplyAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = m.Apply(p)
	}
	return out
}

// ApplyRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Matrix2D) ApplyRect(r Rect) Rect {
	return Bounds(m.ApplyAll(r.Corners()))
}

// Determinant returns the determinant of the linear part.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse matrix, or false when m is singular.
func (m Matrix2D) Invert() (Matrix2D, bool) {
	det := m.Determinant()
	if det == 0 {
		return Identity(), false
	}
	inv := 1.0 / det
	return Matrix2D{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}, true
}

// ToSlice returns the matrix as a slice for JSON.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// IsIdentity reports whether m is the identity within a small epsilon.
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	id := Identity()
	for i := range m {
		if math.Abs(m[i]-id[i]) >= eps {
			return false
		}
	}
	return true
}
