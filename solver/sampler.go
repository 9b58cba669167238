package solver

import (
	"math"

	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/random"
)

// AimSampler chooses the candidate aim points a solver compares.
type AimSampler interface {
	Aims(bounds geometry.Rect) []geometry.Vec2
}

// GridSampler places about Samples aims at the cell centres of a regular
// grid over the bounds, with floor(sqrt(Samples)) rows.
type GridSampler struct {
	Samples int
}

func (g GridSampler) Dims() (rows, cols int) {
	rows = max(1, int(math.Sqrt(float64(g.Samples))))
	cols = max(1, g.Samples/rows)
	return rows, cols
}

func (g GridSampler) Aims(bounds geometry.Rect) []geometry.Vec2 {
	rows, cols := g.Dims()
	aims := make([]geometry.Vec2, 0, rows*cols)
	for i := range cols {
		for j := range rows {
			aims = append(aims, bounds.Lerp(
				(float64(i)+0.5)/float64(cols),
				(float64(j)+0.5)/float64(rows)))
		}
	}
	return aims
}

// RandomSampler draws Samples aims uniformly over the bounds on every call.
type RandomSampler struct {
	Samples int
	Stream  *random.Stream
}

func (r RandomSampler) Aims(bounds geometry.Rect) []geometry.Vec2 {
	aims := make([]geometry.Vec2, r.Samples)
	for i := range aims {
		aims[i] = geometry.Vec2{
			X: r.Stream.Uniform(bounds.Min.X, bounds.Max.X),
			Y: r.Stream.Uniform(bounds.Min.Y, bounds.Max.Y),
		}
	}
	return aims
}
