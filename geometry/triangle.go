package geometry

import "math"

// TriangleArea is half the absolute cross product of two edge vectors.
// Vertex order doesn't matter; collinear points give 0.
func TriangleArea(a, b, c Vec2) float64 {
	return math.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
}

type Triangle struct {
	A, B, C Vec2
}

func (t Triangle) Area() float64 {
	return TriangleArea(t.A, t.B, t.C)
}

// Map sends the reference-triangle point (r, s) to A(1-r-s) + B*r + C*s.
func (t Triangle) Map(r, s float64) Vec2 {
	return t.A.Scale(1 - r - s).Add(t.B.Scale(r)).Add(t.C.Scale(s))
}
