// Package testhelpers builds the landing models and games shared by the
// package tests.
package testhelpers

import (
	"testing"

	"github.com/domino14/bullseye/board"
	"github.com/domino14/bullseye/distribution"
	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/random"
)

// SquareBed is an axis-aligned square bed centred on the origin.
func SquareBed(half float64, hit game.HitData) game.Bed {
	return game.Bed{
		Shape: geometry.NewPolygon(
			geometry.Vec2{X: -half, Y: -half}, geometry.Vec2{X: half, Y: -half},
			geometry.Vec2{X: half, Y: half}, geometry.Vec2{X: -half, Y: half}),
		Hit: hit,
	}
}

// Normal is an unbiased isotropic Gaussian on its own stream.
func Normal(t testing.TB, variance float64, seed int64) *distribution.Normal {
	t.Helper()
	n, err := distribution.NewNormal(geometry.Origin, distribution.Isotropic(variance),
		distribution.WithStream(random.NewStream(seed)))
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func Quadrature(t testing.TB, variance float64, seed int64) *distribution.Quadrature {
	t.Helper()
	return distribution.NewQuadrature(Normal(t, variance, seed))
}

func MonteCarlo(t testing.TB, variance float64, samples int, seed int64) *distribution.MonteCarlo {
	t.Helper()
	mc, err := distribution.NewMonteCarlo(Normal(t, variance, seed), samples)
	if err != nil {
		t.Fatal(err)
	}
	return mc
}

// Game integrates def by quadrature under an isotropic Gaussian.
func Game(t testing.TB, def board.Definition, variance float64, rules game.Rules) *game.Game {
	t.Helper()
	g, err := game.NewGame(def.Target(), Quadrature(t, variance, random.DefaultSeed), rules)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// Standard is the regulation board cut into sub slices per sector.
func Standard(t testing.TB, sub int) board.Definition {
	t.Helper()
	def, err := board.Standard(sub)
	if err != nil {
		t.Fatal(err)
	}
	return def
}
