package game

import "github.com/domino14/bullseye/geometry"

// Bed is one scoring region of the board.
type Bed struct {
	Shape geometry.Polygon
	Hit   HitData
}

// Target is an ordered list of beds. Where beds overlap the earlier one
// wins.
type Target struct {
	beds []Bed
}

func NewTarget(beds []Bed) *Target {
	return &Target{beds: append([]Bed(nil), beds...)}
}

// Beds returns the beds in board order. Callers must not modify the slice.
func (t *Target) Beds() []Bed {
	return t.beds
}

// HitOutcome returns the outcome of a dart landing at p.
func (t *Target) HitOutcome(p geometry.Vec2) HitData {
	for _, b := range t.beds {
		if b.Shape.Contains(p) {
			return b.Hit
		}
	}
	return Miss
}

// Extent is the unpadded bounding box of every bed vertex.
func (t *Target) Extent() geometry.Rect {
	var ext geometry.Rect
	seen := false
	for _, b := range t.beds {
		if b.Shape.Len() == 0 {
			continue
		}
		if !seen {
			ext, seen = b.Shape.Bounds(), true
			continue
		}
		ext = ext.Union(b.Shape.Bounds())
	}
	return ext
}
