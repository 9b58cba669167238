package geometry

import "math"

// Rect is an axis-aligned box.
type Rect struct {
	Min Vec2 `yaml:"min"`
	Max Vec2 `yaml:"max"`
}

// BoundsOf returns the smallest Rect holding every point. With no points
// it returns the zero Rect.
func BoundsOf(pts ...Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{
		Min: Vec2{math.Inf(1), math.Inf(1)},
		Max: Vec2{math.Inf(-1), math.Inf(-1)},
	}
	for _, p := range pts {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}

func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

func (r Rect) Center() Vec2 {
	return r.Min.Add(r.Max).Scale(0.5)
}

// Pad grows the box by frac of its width on the left and right, and frac
// of its height on the top and bottom.
func (r Rect) Pad(frac float64) Rect {
	dx := r.Width() * frac
	dy := r.Height() * frac
	return Rect{
		Min: Vec2{r.Min.X - dx, r.Min.Y - dy},
		Max: Vec2{r.Max.X + dx, r.Max.Y + dy},
	}
}

func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Vec2{min(r.Min.X, o.Min.X), min(r.Min.Y, o.Min.Y)},
		Max: Vec2{max(r.Max.X, o.Max.X), max(r.Max.Y, o.Max.Y)},
	}
}

// Contains reports whether p lies in the closed box.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Lerp maps fractions (fx, fy) in [0,1] onto the box.
func (r Rect) Lerp(fx, fy float64) Vec2 {
	return Vec2{r.Min.X + r.Width()*fx, r.Min.Y + r.Height()*fy}
}
