package game_test

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"pgregory.net/rapid"

	"github.com/domino14/bullseye/board"
	"github.com/domino14/bullseye/distribution"
	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/metrics"
	"github.com/domino14/bullseye/testhelpers"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

var squareBed = testhelpers.SquareBed

func quadrature(t *testing.T, variance float64) *distribution.Quadrature {
	return testhelpers.Quadrature(t, variance, 3)
}

func monteCarlo(t *testing.T, variance float64, samples int) *distribution.MonteCarlo {
	return testhelpers.MonteCarlo(t, variance, samples, 12345)
}

func sumStates(outs []game.StateProbability) float64 {
	s := 0.0
	for _, o := range outs {
		s += o.P
	}
	return s
}

func probOf(outs []game.StateProbability, s game.State) float64 {
	for _, o := range outs {
		if o.State == s {
			return o.P
		}
	}
	return 0
}

func TestHitData(t *testing.T) {
	is := is.New(t)
	d20 := game.HitData{Kind: game.Double, Delta: -40}
	t20 := game.HitData{Kind: game.Treble, Delta: -60}
	s5 := game.HitData{Kind: game.Normal, Delta: -5}
	is.True(s5.Less(game.Miss))
	is.True(game.Miss.Less(d20))
	is.True(d20.Less(t20))
	is.True(!t20.Less(t20))
	is.Equal(d20.String(), "D20")
	is.Equal(t20.String(), "T20")
	is.Equal(s5.String(), "5")
	is.Equal(game.Miss.String(), "miss")

	k, err := game.ParseHitKind("Treble")
	is.NoErr(err)
	is.Equal(k, game.Treble)
	_, err = game.ParseHitKind("quadruple")
	is.True(err != nil)
}

func TestFirstBedWins(t *testing.T) {
	is := is.New(t)
	inner := squareBed(1, game.HitData{Kind: game.Double, Delta: -50})
	outer := squareBed(5, game.HitData{Kind: game.Normal, Delta: -20})
	target := game.NewTarget([]game.Bed{inner, outer})
	is.Equal(target.HitOutcome(geometry.Vec2{}), inner.Hit)
	is.Equal(target.HitOutcome(geometry.Vec2{X: 3}), outer.Hit)
	is.Equal(target.HitOutcome(geometry.Vec2{X: 30}), game.Miss)

	reversed := game.NewTarget([]game.Bed{outer, inner})
	is.Equal(reversed.HitOutcome(geometry.Vec2{}), outer.Hit)
}

func TestRules(t *testing.T) {
	is := is.New(t)
	type tc struct {
		rules   game.Rules
		current game.State
		hit     game.HitData
		next    game.State
	}
	d10 := game.HitData{Kind: game.Double, Delta: -20}
	s20 := game.HitData{Kind: game.Normal, Delta: -20}
	t20 := game.HitData{Kind: game.Treble, Delta: -60}
	cases := []tc{
		{game.FinishOnAny{}, 50, s20, 30},
		{game.FinishOnAny{}, 20, s20, 0},
		{game.FinishOnAny{}, 10, s20, 10},
		{game.FinishOnAny{}, 60, t20, 0},
		{game.FinishOnAny{}, 7, game.Miss, 7},
		{game.FinishOnDouble{}, 50, s20, 30},
		{game.FinishOnDouble{}, 20, s20, 20},
		{game.FinishOnDouble{}, 60, t20, 60},
		{game.FinishOnDouble{}, 20, d10, 0},
		{game.FinishOnDouble{}, 10, d10, 10},
		{game.FinishOnDouble{}, 21, s20, 1},
		{game.FinishOnDouble{}, 0, game.Miss, 0},
	}
	for _, c := range cases {
		is.Equal(c.rules.HandleThrow(c.current, c.hit), c.next)
	}

	r, err := game.RulesByName("double")
	is.NoErr(err)
	is.Equal(r.Name(), "double")
	_, err = game.RulesByName("masters")
	is.True(errors.Is(err, game.ErrUnknownRules))
}

func TestNewGameValidation(t *testing.T) {
	is := is.New(t)
	q := quadrature(t, 1)
	target := board.Ring(8).Target()

	_, err := game.NewGame(nil, q, game.FinishOnAny{})
	is.True(errors.Is(err, game.ErrNilTarget))
	_, err = game.NewGame(target, nil, game.FinishOnAny{})
	is.True(errors.Is(err, game.ErrNilDistribution))
	_, err = game.NewGame(target, q, nil)
	is.True(errors.Is(err, game.ErrNilRules))

	ell := game.Bed{
		Shape: geometry.NewPolygon(geometry.Vec2{X: 0, Y: 0}, geometry.Vec2{X: 2, Y: 0}, geometry.Vec2{X: 2, Y: 1},
			geometry.Vec2{X: 1, Y: 1}, geometry.Vec2{X: 1, Y: 2}, geometry.Vec2{X: 0, Y: 2}),
		Hit: game.HitData{Kind: game.Normal, Delta: -3},
	}
	_, err = game.NewGame(game.NewTarget([]game.Bed{ell}), q, game.FinishOnAny{})
	is.True(errors.Is(err, game.ErrInvalidRegion))
	is.True(errors.Is(err, distribution.ErrNonConvexRegion))

	// sampling handles any polygon
	_, err = game.NewGame(game.NewTarget([]game.Bed{ell}), monteCarlo(t, 1, 100), game.FinishOnAny{})
	is.NoErr(err)
}

func TestNearlyDeterministicThrow(t *testing.T) {
	is := is.New(t)
	target := game.NewTarget([]game.Bed{squareBed(5, game.HitData{Kind: game.Normal, Delta: -20})})
	g, err := game.NewGame(target, monteCarlo(t, 0.001, 10000), game.FinishOnAny{})
	is.NoErr(err)

	outs, err := g.ThrowOutcomes(geometry.Origin, 20)
	is.NoErr(err)
	is.True(probOf(outs, 0) > 0.99)

	outs, err = g.ThrowOutcomes(geometry.Origin, 10)
	is.NoErr(err)
	is.True(probOf(outs, 10) > 0.99)

	// far off the board everything is a miss
	outs, err = g.ThrowOutcomes(geometry.Vec2{X: 100}, 20)
	is.NoErr(err)
	is.Equal(len(outs), 1)
	is.Equal(outs[0], game.StateProbability{State: 20, P: 1})
}

func TestOutcomeDistributionCached(t *testing.T) {
	is := is.New(t)
	rec := metrics.NewRecorder()
	g, err := game.NewGame(board.Ring(8).Target(), quadrature(t, 100), game.FinishOnDouble{},
		game.WithMetrics(rec))
	is.NoErr(err)

	aim := geometry.Vec2{X: 75, Y: 0}
	first := g.OutcomeDistribution(aim)
	second := g.OutcomeDistribution(aim)
	is.Equal(first, second)
	is.Equal(g.CachedAims(), 1)

	// state does not matter to the cache
	_, err = g.ThrowOutcomes(aim, 40)
	is.NoErr(err)
	_, err = g.ThrowOutcomes(aim, 301)
	is.NoErr(err)
	is.Equal(g.CachedAims(), 1)

	for i := 1; i < len(first); i++ {
		is.True(first[i-1].Hit.Less(first[i].Hit))
	}
	total := 0.0
	for _, hp := range first {
		is.True(hp.P >= 0)
		total += hp.P
	}
	is.True(math.Abs(total-1) < 1e-12)
}

func TestFinishOnDoubleAtBull(t *testing.T) {
	is := is.New(t)
	g, err := game.NewGame(board.Ring(8).Target(), quadrature(t, 50), game.FinishOnDouble{})
	is.NoErr(err)
	outs, err := g.ThrowOutcomes(geometry.Origin, 50)
	is.NoErr(err)
	is.True(probOf(outs, 0) > 0)
	is.True(probOf(outs, 50) > 0)
	is.True(math.Abs(sumStates(outs)-1) < 1e-9)
}

func TestStateIncreaseRejected(t *testing.T) {
	is := is.New(t)
	bonus := squareBed(10, game.HitData{Kind: game.Normal, Delta: 5})
	g, err := game.NewGame(game.NewTarget([]game.Bed{bonus}), quadrature(t, 1), game.FinishOnAny{})
	is.NoErr(err)
	_, err = g.ThrowOutcomes(geometry.Origin, 20)
	is.True(errors.Is(err, game.ErrStateIncreased))

	_, err = g.ThrowOutcomes(geometry.Origin, -1)
	is.True(errors.Is(err, game.ErrNegativeState))
}

func TestSampleThrow(t *testing.T) {
	is := is.New(t)
	g, err := game.NewGame(board.Ring(8).Target(), monteCarlo(t, 100, 1000), game.FinishOnAny{})
	is.NoErr(err)
	counts := map[game.State]int{}
	for range 1000 {
		next, err := g.SampleThrow(geometry.Origin, 50)
		is.NoErr(err)
		is.True(next <= 50)
		counts[next]++
	}
	is.True(len(counts) > 1)
	is.True(counts[0] > 0)
}

func TestTargetExtent(t *testing.T) {
	is := is.New(t)
	target := game.NewTarget([]game.Bed{
		{Shape: geometry.NewPolygon(geometry.Vec2{X: 2, Y: 3}, geometry.Vec2{X: 4, Y: 3}, geometry.Vec2{X: 4, Y: 5}),
			Hit: game.HitData{Kind: game.Normal, Delta: -1}},
		{Shape: geometry.NewPolygon(),
			Hit: game.HitData{Kind: game.Normal, Delta: -2}},
		{Shape: geometry.NewPolygon(geometry.Vec2{X: 7, Y: 1}, geometry.Vec2{X: 9, Y: 1}, geometry.Vec2{X: 9, Y: 2}),
			Hit: game.HitData{Kind: game.Double, Delta: -4}},
	})
	is.Equal(target.Extent(), geometry.Rect{Min: geometry.Vec2{X: 2, Y: 1}, Max: geometry.Vec2{X: 9, Y: 5}})
	is.Equal(game.NewTarget(nil).Extent(), geometry.Rect{})
}

func TestTargetBounds(t *testing.T) {
	is := is.New(t)
	target := game.NewTarget([]game.Bed{
		{Shape: geometry.NewPolygon(geometry.Vec2{X: 0, Y: 0}, geometry.Vec2{X: 10, Y: 0}, geometry.Vec2{X: 10, Y: 20}),
			Hit: game.HitData{Kind: game.Normal, Delta: -1}},
	})
	g, err := game.NewGame(target, quadrature(t, 1), game.FinishOnAny{})
	is.NoErr(err)
	is.Equal(g.TargetBounds(), geometry.Rect{Min: geometry.Vec2{X: -1, Y: -2}, Max: geometry.Vec2{X: 11, Y: 22}})
	is.Equal(g.TargetBounds(), g.TargetBounds())
}

func TestProbabilitiesAndCountdown(t *testing.T) {
	def, err := board.Standard(2)
	if err != nil {
		t.Fatal(err)
	}
	g, err := game.NewGame(def.Target(), quadrature(t, 400), game.FinishOnDouble{})
	if err != nil {
		t.Fatal(err)
	}
	bounds := g.TargetBounds()
	rapid.Check(t, func(t *rapid.T) {
		aim := bounds.Lerp(rapid.Float64Range(0, 1).Draw(t, "fx"), rapid.Float64Range(0, 1).Draw(t, "fy"))
		state := game.State(rapid.IntRange(0, 501).Draw(t, "state"))

		total := 0.0
		for _, hp := range g.OutcomeDistribution(aim) {
			if hp.P < 0 {
				t.Fatalf("negative probability %v for %v", hp.P, hp.Hit)
			}
			total += hp.P
		}
		if math.Abs(total-1) > 1e-9 {
			t.Fatalf("hit probabilities sum to %v", total)
		}

		outs, err := g.ThrowOutcomes(aim, state)
		if err != nil {
			t.Fatal(err)
		}
		for _, o := range outs {
			if o.State < 0 || o.State > state {
				t.Fatalf("state %d left countdown range [0, %d]", o.State, state)
			}
		}
		if s := sumStates(outs); math.Abs(s-1) > 1e-9 {
			t.Fatalf("state probabilities sum to %v", s)
		}
	})
}
