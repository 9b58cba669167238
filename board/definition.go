// Package board reads, writes and generates dartboard layouts.
package board

import (
	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
)

// BedSpec is one bed as it appears in a board file. Color is kept for
// rendering and round trips; the game ignores it.
type BedSpec struct {
	Score    int             `yaml:"score"`
	Kind     game.HitKind    `yaml:"kind"`
	Color    string          `yaml:"color,omitempty"`
	Vertices []geometry.Vec2 `yaml:"vertices,flow"`
}

// Hit is the outcome of landing in the bed. Scores count down, so the
// delta is the negated score.
func (b BedSpec) Hit() game.HitData {
	return game.HitData{Kind: b.Kind, Delta: -b.Score}
}

type Definition struct {
	Name string    `yaml:"name,omitempty"`
	Beds []BedSpec `yaml:"beds"`
}

// Target converts the definition into the game's ordered bed list.
func (d Definition) Target() *game.Target {
	beds := make([]game.Bed, len(d.Beds))
	for i, b := range d.Beds {
		beds[i] = game.Bed{Shape: geometry.NewPolygon(b.Vertices...), Hit: b.Hit()}
	}
	return game.NewTarget(beds)
}
