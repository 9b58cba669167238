package geometry

import "math"

// Polygon is a closed ring of vertices. Edges run between consecutive
// vertices and from the last vertex back to the first. A Polygon is
// immutable once built.
type Polygon struct {
	vertices []Vec2
	area     float64
}

// NewPolygon copies the given vertices into a new Polygon.
func NewPolygon(vertices ...Vec2) Polygon {
	vs := make([]Vec2, len(vertices))
	copy(vs, vertices)
	return Polygon{vertices: vs, area: math.Abs(signedArea(vs))}
}

// Vertices returns the polygon's vertices in order. Callers must not
// modify the returned slice.
func (p Polygon) Vertices() []Vec2 {
	return p.vertices
}

func (p Polygon) Len() int {
	return len(p.vertices)
}

// Area is the absolute shoelace area.
func (p Polygon) Area() float64 {
	return p.area
}

// Degenerate reports whether the polygon has fewer than three vertices or
// encloses no area. Degenerate polygons contain no points.
func (p Polygon) Degenerate() bool {
	return len(p.vertices) < 3 || p.area == 0
}

// Contains reports whether pt lies inside the polygon, using an even-odd
// horizontal ray cast toward +x. Each edge is treated as the half-open
// interval [lower.Y, upper.Y) so a ray through a shared vertex is counted
// once.
func (p Polygon) Contains(pt Vec2) bool {
	if p.Degenerate() {
		return false
	}
	n := len(p.vertices)
	inside := false
	for i := range n {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		if a.Y > b.Y {
			a, b = b, a
		}
		if pt.Y < a.Y || pt.Y >= b.Y {
			continue
		}
		// a.Y < b.Y here, horizontal edges never pass the interval test.
		xCross := a.X + (pt.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if pt.X <= xCross {
			inside = !inside
		}
	}
	return inside
}

// IsConvex reports whether the polygon is convex. Collinear runs of
// vertices are allowed. Degenerate polygons are not convex.
func (p Polygon) IsConvex() bool {
	if p.Degenerate() {
		return false
	}
	n := len(p.vertices)
	sign := 0
	for i := range n {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		c := p.vertices[(i+2)%n]
		cross := b.Sub(a).Cross(c.Sub(b))
		switch {
		case cross > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cross < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	// A star or other self-intersecting ring can turn the same way at every
	// vertex; its turning angles then add up to more than one full turn.
	total := 0.0
	for i := range n {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		c := p.vertices[(i+2)%n]
		u, w := b.Sub(a), c.Sub(b)
		if u.Norm() == 0 || w.Norm() == 0 {
			continue
		}
		total += math.Atan2(u.Cross(w), u.X*w.X+u.Y*w.Y)
	}
	return math.Abs(total) < 2*math.Pi+1e-9
}

// Centroid returns the area centroid. For degenerate polygons it falls
// back to the mean of the vertices.
func (p Polygon) Centroid() Vec2 {
	n := len(p.vertices)
	if n == 0 {
		return Origin
	}
	if p.Degenerate() {
		var sum Vec2
		for _, v := range p.vertices {
			sum = sum.Add(v)
		}
		return sum.Scale(1 / float64(n))
	}
	var cx, cy float64
	for i := range n {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		cr := a.Cross(b)
		cx += (a.X + b.X) * cr
		cy += (a.Y + b.Y) * cr
	}
	f := 1 / (6 * signedArea(p.vertices))
	return Vec2{cx * f, cy * f}
}

// Translate returns a copy of the polygon moved by off.
func (p Polygon) Translate(off Vec2) Polygon {
	vs := make([]Vec2, len(p.vertices))
	for i, v := range p.vertices {
		vs[i] = v.Add(off)
	}
	return Polygon{vertices: vs, area: p.area}
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (p Polygon) Bounds() Rect {
	return BoundsOf(p.vertices...)
}

// Triangles fans the polygon from vertex 0: (v0, vi, vi+1) for
// i = 1..n-2. The fan covers the polygon exactly only when it is convex.
func (p Polygon) Triangles() []Triangle {
	n := len(p.vertices)
	if n < 3 {
		return nil
	}
	tris := make([]Triangle, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, Triangle{p.vertices[0], p.vertices[i], p.vertices[i+1]})
	}
	return tris
}

func signedArea(vs []Vec2) float64 {
	n := len(vs)
	if n < 3 {
		return 0
	}
	s := 0.0
	for i := range n {
		s += vs[i].Cross(vs[(i+1)%n])
	}
	return s / 2
}
