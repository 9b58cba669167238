package solver_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/bullseye/board"
	"github.com/domino14/bullseye/distribution"
	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/metrics"
	"github.com/domino14/bullseye/random"
	"github.com/domino14/bullseye/solver"
	"github.com/domino14/bullseye/testhelpers"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

var ctx = context.Background()

var newGame = testhelpers.Game

func standard(t *testing.T) board.Definition {
	return testhelpers.Standard(t, 2)
}

func minThrows(t *testing.T, g *game.Game, opts ...solver.Option) *solver.MinThrows {
	t.Helper()
	s, err := solver.NewMinThrows(g, append([]solver.Option{solver.WithAimSamples(400)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSolvedStateIsFree(t *testing.T) {
	is := is.New(t)
	g := newGame(t, board.Ring(8), 100, game.FinishOnAny{})
	mt := minThrows(t, g)
	mp, err := solver.NewMaxPoints(g, solver.WithAimSamples(100))
	is.NoErr(err)

	for _, s := range []solver.Solver{mt, mp} {
		r, err := s.Solve(ctx, 0)
		is.NoErr(err)
		is.Equal(r, solver.Result{Score: 0, Aim: geometry.Origin})
	}
	v, err := mt.SolveAim(ctx, 0, geometry.Vec2{X: 500, Y: 500})
	is.NoErr(err)
	is.Equal(v, 0.0)
	is.Equal(mt.SolvedStates(), 0)
}

func TestMinThrowsRing(t *testing.T) {
	is := is.New(t)
	g := newGame(t, board.Ring(16), 400, game.FinishOnAny{})
	mt := minThrows(t, g)

	// one hit on the wide ring of 20s finishes
	r20, err := mt.Solve(ctx, 20)
	is.NoErr(err)
	is.True(r20.Score >= 1)
	is.True(r20.Score < 2)
	radius := r20.Aim.Norm()
	is.True(radius > 40 && radius < 110)

	r40, err := mt.Solve(ctx, 40)
	is.NoErr(err)
	is.True(r40.Score > r20.Score)
	is.True(r40.Score < 5)
}

func TestUnwinnableState(t *testing.T) {
	is := is.New(t)
	// nothing on the ring board scores 10, and 30 can only reach 10
	g := newGame(t, board.Ring(8), 100, game.FinishOnAny{})
	mt := minThrows(t, g)
	for _, s := range []game.State{10, 30} {
		r, err := mt.Solve(ctx, s)
		is.NoErr(err)
		is.Equal(r.Score, solver.InfiniteScore)
		is.Equal(r.Aim, geometry.Origin)
	}

	// a double cannot leave 1 on a standard board
	g = newGame(t, standard(t), 400, game.FinishOnDouble{})
	mt = minThrows(t, g)
	r, err := mt.Solve(ctx, 1)
	is.NoErr(err)
	is.Equal(r.Score, solver.InfiniteScore)
	is.Equal(r.Aim, geometry.Origin)
}

func TestMinThrowsStandard(t *testing.T) {
	is := is.New(t)
	g := newGame(t, standard(t), 400, game.FinishOnAny{})
	mt := minThrows(t, g)
	bounds := g.TargetBounds()

	for _, s := range []game.State{1, 20, 41, 60} {
		r, err := mt.Solve(ctx, s)
		is.NoErr(err)
		is.True(r.Score >= 1)
		is.True(r.Score < 30)
		is.True(!math.IsNaN(r.Score))
		is.True(bounds.Contains(r.Aim))

		// the stored aim scores what Solve reported
		v, err := mt.SolveAim(ctx, s, r.Aim)
		is.NoErr(err)
		assert.InDelta(t, r.Score, v, 1e-9)
	}
	is.True(mt.SolvedStates() >= 4)
}

func TestIdempotent(t *testing.T) {
	is := is.New(t)
	g := newGame(t, standard(t), 400, game.FinishOnAny{})
	mt := minThrows(t, g)
	first, err := mt.Solve(ctx, 40)
	is.NoErr(err)
	for range 3 {
		again, err := mt.Solve(ctx, 40)
		is.NoErr(err)
		is.Equal(again, first)
	}
}

func TestThreadCountDoesNotChangeResult(t *testing.T) {
	is := is.New(t)
	def := standard(t)
	one := minThrows(t, newGame(t, def, 400, game.FinishOnDouble{}), solver.WithThreads(1))
	many := minThrows(t, newGame(t, def, 400, game.FinishOnDouble{}), solver.WithThreads(8))
	for _, s := range []game.State{2, 32, 40} {
		a, err := one.Solve(ctx, s)
		is.NoErr(err)
		b, err := many.Solve(ctx, s)
		is.NoErr(err)
		is.Equal(a, b)
	}
}

func TestConcurrentSolve(t *testing.T) {
	is := is.New(t)
	mt := minThrows(t, newGame(t, standard(t), 400, game.FinishOnAny{}), solver.WithThreads(2))
	results := make([]solver.Result, 4)
	errs := make([]error, 4)
	var wg sync.WaitGroup
	for i := range results {
		wg.Go(func() {
			results[i], errs[i] = mt.Solve(ctx, 37)
		})
	}
	wg.Wait()
	for i := range results {
		is.NoErr(errs[i])
		is.Equal(results[i], results[0])
	}
}

func TestAccuracyHelps(t *testing.T) {
	is := is.New(t)
	def := standard(t)
	accurate := minThrows(t, newGame(t, def, 400, game.FinishOnAny{}))
	wild := minThrows(t, newGame(t, def, 6400, game.FinishOnAny{}))
	a, err := accurate.Solve(ctx, 40)
	is.NoErr(err)
	w, err := wild.Solve(ctx, 40)
	is.NoErr(err)
	is.True(a.Score < w.Score)
}

func TestDoubleOutIsNeverEasier(t *testing.T) {
	is := is.New(t)
	def := standard(t)
	anyOut := minThrows(t, newGame(t, def, 400, game.FinishOnAny{}))
	doubleOut := minThrows(t, newGame(t, def, 400, game.FinishOnDouble{}))
	for _, s := range []game.State{2, 3, 20, 40} {
		a, err := anyOut.Solve(ctx, s)
		is.NoErr(err)
		d, err := doubleOut.Solve(ctx, s)
		is.NoErr(err)
		is.True(d.Score >= a.Score-1e-9)
	}
}

func TestFarAimIsWorse(t *testing.T) {
	is := is.New(t)
	mt := minThrows(t, newGame(t, standard(t), 400, game.FinishOnAny{}))
	best, err := mt.Solve(ctx, 50)
	is.NoErr(err)
	far, err := mt.SolveAim(ctx, 50, geometry.Vec2{X: 1000, Y: 1000})
	is.NoErr(err)
	is.Equal(far, solver.InfiniteScore)
	is.True(far > best.Score)
}

func TestCancelledSolve(t *testing.T) {
	is := is.New(t)
	mt := minThrows(t, newGame(t, standard(t), 400, game.FinishOnAny{}))
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err := mt.Solve(cctx, 40)
	is.True(errors.Is(err, context.Canceled))
	is.Equal(mt.SolvedStates(), 0)

	// errors are not remembered
	_, err = mt.Solve(ctx, 40)
	is.NoErr(err)
}

func TestMaxPoints(t *testing.T) {
	is := is.New(t)
	g := newGame(t, standard(t), 400, game.FinishOnAny{})
	mp, err := solver.NewMaxPoints(g, solver.WithAimSamples(400))
	is.NoErr(err)
	is.Equal(mp.Name(), "max-points")
	is.True(mp.Better(2, 1))

	r, err := mp.Solve(ctx, 301)
	is.NoErr(err)
	is.True(r.Score > 0)
	is.True(r.Score <= 60)
	v, err := mp.SolveAim(ctx, 301, r.Aim)
	is.NoErr(err)
	assert.InDelta(t, r.Score, v, 1e-9)

	// nothing scores off the board
	v, err = mp.SolveAim(ctx, 301, geometry.Vec2{X: 1000, Y: 1000})
	is.NoErr(err)
	is.Equal(v, 0.0)

	// a bust scores nothing, so a low state is worth less per throw
	low, err := mp.Solve(ctx, 2)
	is.NoErr(err)
	is.True(low.Score <= 2)
	is.True(low.Score < r.Score)
}

func TestSamplerValidation(t *testing.T) {
	is := is.New(t)
	g := newGame(t, board.Ring(4), 100, game.FinishOnAny{})
	_, err := solver.NewMinThrows(g, solver.WithAimSamples(0))
	is.True(errors.Is(err, solver.ErrInvalidSampleCount))
	_, err = solver.NewMaxPoints(g, solver.WithSampler(solver.RandomSampler{Samples: -1}))
	is.True(errors.Is(err, solver.ErrInvalidSampleCount))
	_, err = solver.NewMaxPoints(g, solver.WithSampler(solver.RandomSampler{Samples: 5}))
	is.True(err != nil)
}

func TestGridSampler(t *testing.T) {
	is := is.New(t)
	type tc struct {
		samples    int
		rows, cols int
	}
	cases := []tc{
		{1, 1, 1},
		{2, 1, 2},
		{10, 3, 3},
		{400, 20, 20},
		{1000, 31, 32},
	}
	bounds := geometry.Rect{Min: geometry.Vec2{X: -10, Y: -20}, Max: geometry.Vec2{X: 10, Y: 20}}
	for _, c := range cases {
		gs := solver.GridSampler{Samples: c.samples}
		rows, cols := gs.Dims()
		is.Equal(rows, c.rows)
		is.Equal(cols, c.cols)
		aims := gs.Aims(bounds)
		is.Equal(len(aims), rows*cols)
		for _, a := range aims {
			is.True(bounds.Contains(a))
		}
	}
	is.Equal(solver.GridSampler{Samples: 1}.Aims(bounds)[0], bounds.Center())
}

func TestRandomSampler(t *testing.T) {
	is := is.New(t)
	bounds := geometry.Rect{Min: geometry.Vec2{X: 0, Y: 0}, Max: geometry.Vec2{X: 5, Y: 1}}
	a := solver.RandomSampler{Samples: 50, Stream: random.NewStream(9)}.Aims(bounds)
	b := solver.RandomSampler{Samples: 50, Stream: random.NewStream(9)}.Aims(bounds)
	is.Equal(a, b)
	for _, p := range a {
		is.True(bounds.Contains(p))
	}
}

func TestHeatMap(t *testing.T) {
	is := is.New(t)
	g := newGame(t, standard(t), 400, game.FinishOnDouble{})
	mt := minThrows(t, g)

	_, err := solver.NewHeatMap(mt, g.TargetBounds(), 0, 10)
	is.True(errors.Is(err, solver.ErrInvalidGrid))

	hm, err := solver.NewHeatMap(mt, g.TargetBounds(), 10, 12)
	is.NoErr(err)
	rows, cols := hm.Dims()
	is.Equal(rows, 10)
	is.Equal(cols, 12)

	grid, err := hm.Grid(ctx, 40)
	is.NoErr(err)
	is.Equal(len(grid), 10)
	for _, row := range grid {
		is.Equal(len(row), 12)
	}
	lo, hi := solver.Range(grid)
	is.True(lo >= 1)
	is.True(hi > lo)

	best, err := mt.Solve(ctx, 40)
	is.NoErr(err)
	is.True(best.Score < hi)

	v, err := mt.SolveAim(ctx, 40, hm.Cell(3, 7))
	is.NoErr(err)
	is.Equal(grid[7][3], v)

	again, err := hm.Grid(ctx, 40)
	is.NoErr(err)
	is.Equal(again, grid)
}

type countingSolver struct {
	solver.Solver
	solves atomic.Int32
}

func (c *countingSolver) Solve(ctx context.Context, s game.State) (solver.Result, error) {
	c.solves.Add(1)
	return c.Solver.Solve(ctx, s)
}

func TestHeatMapOnlyScoresCells(t *testing.T) {
	is := is.New(t)
	g := newGame(t, board.Ring(8), 100, game.FinishOnAny{})
	mp, err := solver.NewMaxPoints(g, solver.WithAimSamples(100))
	is.NoErr(err)
	cs := &countingSolver{Solver: mp}

	hm, err := solver.NewHeatMap(cs, g.TargetBounds(), 4, 5)
	is.NoErr(err)
	grid, err := hm.Grid(ctx, 60)
	is.NoErr(err)
	is.Equal(len(grid), 4)
	is.Equal(cs.solves.Load(), int32(0))

	v, err := mp.SolveAim(ctx, 60, hm.Cell(2, 1))
	is.NoErr(err)
	is.Equal(grid[1][2], v)
}

func TestTable(t *testing.T) {
	is := is.New(t)
	g := newGame(t, standard(t), 400, game.FinishOnDouble{})
	mt := minThrows(t, g)

	_, err := solver.Table(ctx, mt, 5, 3)
	is.True(errors.Is(err, solver.ErrInvalidRange))

	rows, err := solver.Table(ctx, mt, 0, 6)
	is.NoErr(err)
	is.Equal(len(rows), 7)
	is.Equal(rows[0].Result, solver.Result{Score: 0, Aim: geometry.Origin})
	is.Equal(rows[1].Score, solver.InfiniteScore)
	for i, r := range rows {
		is.Equal(r.State, game.State(i))
	}

	var buf bytes.Buffer
	is.NoErr(solver.WriteTable(&buf, solver.Strategy{Solver: mt.Name(), Rules: "double", Rows: rows}))
	is.True(strings.Contains(buf.String(), "solver: min-throws"))
	back, err := solver.ReadTable(&buf)
	is.NoErr(err)
	is.Equal(back.Rows, rows)
}

func TestSolverMetrics(t *testing.T) {
	is := is.New(t)
	rec := metrics.NewRecorder()
	n, err := distribution.NewNormal(geometry.Origin, distribution.Isotropic(100))
	is.NoErr(err)
	g, err := game.NewGame(board.Ring(8).Target(), distribution.NewQuadrature(n),
		game.FinishOnAny{}, game.WithMetrics(rec))
	is.NoErr(err)
	mt := minThrows(t, g, solver.WithMetrics(rec))
	_, err = mt.Solve(ctx, 40)
	is.NoErr(err)

	summary, err := rec.Summary()
	is.NoErr(err)
	is.True(strings.Contains(summary, "bullseye_solver_states_solved_total{strategy=min-throws}"))
	is.True(strings.Contains(summary, "bullseye_game_outcome_cache_hits_total"))
}
