package board

import (
	"fmt"
	"math"

	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
)

// Regulation dimensions in millimetres, measured from the centre.
const (
	InnerBullRadius   = 6.35
	OuterBullRadius   = 15.9
	TrebleInnerRadius = 99.0
	TrebleOuterRadius = 107.0
	DoubleInnerRadius = 162.0
	DoubleOuterRadius = 170.0
)

// SectorOrder lists the sector values clockwise starting from the top.
var SectorOrder = [20]int{20, 1, 18, 4, 13, 6, 10, 15, 2, 17, 3, 19, 7, 16, 8, 11, 14, 9, 12, 5}

const DefaultSubdivisions = 4

func deg(d float64) float64 {
	return d * math.Pi / 180
}

func polar(r, theta float64) geometry.Vec2 {
	return geometry.Vec2{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// annularQuad approximates the ring slice between radii r0 < r1 and angles
// lo < hi with a convex quadrilateral in counterclockwise order.
func annularQuad(r0, r1, lo, hi float64) []geometry.Vec2 {
	return []geometry.Vec2{polar(r0, lo), polar(r0, hi), polar(r1, hi), polar(r1, lo)}
}

// Standard builds the regulation board. Curved edges are replaced by
// chords: each sector is cut into subdivisions slices per ring, so every
// bed is a convex quadrilateral and the board can be integrated by
// quadrature. The inner bull is a Double worth 50 and the outer bull a
// Normal worth 25.
func Standard(subdivisions int) (Definition, error) {
	if subdivisions < 1 {
		return Definition{}, fmt.Errorf("subdivisions must be positive, got %d", subdivisions)
	}
	slices := 20 * subdivisions
	step := 18.0 / float64(subdivisions)
	// slice k spans [top - (k+1)*step, top - k*step] degrees; sector 20
	// is centred on the positive y axis.
	const top = 99.0
	lo := func(k int) float64 { return deg(top - float64(k+1)*step) }
	hi := func(k int) float64 { return deg(top - float64(k)*step) }

	def := Definition{Name: fmt.Sprintf("standard-%d", subdivisions)}

	bull := make([]geometry.Vec2, slices)
	for k := range slices {
		// counterclockwise: walk the slices backwards
		bull[k] = polar(InnerBullRadius, hi(slices-1-k))
	}
	def.Beds = append(def.Beds, BedSpec{Score: 50, Kind: game.Double, Color: "red", Vertices: bull})
	for k := range slices {
		def.Beds = append(def.Beds, BedSpec{
			Score: 25, Kind: game.Normal, Color: "green",
			Vertices: annularQuad(InnerBullRadius, OuterBullRadius, lo(k), hi(k)),
		})
	}

	for sector, value := range SectorOrder {
		single, ring := "black", "red"
		if sector%2 == 1 {
			single, ring = "white", "green"
		}
		for sub := range subdivisions {
			k := sector*subdivisions + sub
			a, b := lo(k), hi(k)
			def.Beds = append(def.Beds,
				BedSpec{Score: value, Kind: game.Normal, Color: single,
					Vertices: annularQuad(OuterBullRadius, TrebleInnerRadius, a, b)},
				BedSpec{Score: 3 * value, Kind: game.Treble, Color: ring,
					Vertices: annularQuad(TrebleInnerRadius, TrebleOuterRadius, a, b)},
				BedSpec{Score: value, Kind: game.Normal, Color: single,
					Vertices: annularQuad(TrebleOuterRadius, DoubleInnerRadius, a, b)},
				BedSpec{Score: 2 * value, Kind: game.Double, Color: ring,
					Vertices: annularQuad(DoubleInnerRadius, DoubleOuterRadius, a, b)},
			)
		}
	}
	return def, nil
}

// Ring builds a small practice board: a Double 50 bull (an octagon of
// radius 6.35), a ring of 20s between radii 50 and 100 and a ring of
// Double 20s between 150 and 170, each ring cut into segments convex
// pieces.
func Ring(segments int) Definition {
	def := Definition{Name: fmt.Sprintf("ring-%d", segments)}
	bull := make([]geometry.Vec2, 8)
	for i := range bull {
		bull[i] = polar(InnerBullRadius, 2*math.Pi*float64(i)/8)
	}
	def.Beds = append(def.Beds, BedSpec{Score: 50, Kind: game.Double, Color: "red", Vertices: bull})
	angle := func(i int) float64 { return 2 * math.Pi * float64(i) / float64(segments) }
	for i := range segments {
		def.Beds = append(def.Beds, BedSpec{Score: 20, Kind: game.Normal, Color: "white",
			Vertices: annularQuad(50, 100, angle(i), angle(i+1))})
	}
	for i := range segments {
		def.Beds = append(def.Beds, BedSpec{Score: 40, Kind: game.Double, Color: "red",
			Vertices: annularQuad(150, 170, angle(i), angle(i+1))})
	}
	return def
}
