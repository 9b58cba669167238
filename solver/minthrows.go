package solver

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
)

// MinThrows minimises the expected number of throws to finish. The
// expected value E(s) of aiming at a satisfies
//
//	E(s) = 1 + P(s|a) E(s) + sum over s' != s of P(s'|a) E(s')
//
// and because the rules never raise the score every s' is below s, so the
// lower states can be solved first. Solved states are kept for the life
// of the solver.
type MinThrows struct {
	game *game.Game
	cfg  config
	memo *memo[Result]
}

func NewMinThrows(g *game.Game, opts ...Option) (*MinThrows, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	return &MinThrows{game: g, cfg: cfg, memo: newMemo[Result]()}, nil
}

func (m *MinThrows) Name() string {
	return "min-throws"
}

func (m *MinThrows) Better(a, b float64) bool {
	return a < b
}

// SolvedStates is the number of states in the memo table.
func (m *MinThrows) SolvedStates() int {
	return m.memo.size()
}

func (m *MinThrows) Solve(ctx context.Context, s game.State) (Result, error) {
	if s == 0 {
		return Result{Score: 0, Aim: geometry.Origin}, nil
	}
	if s < 0 {
		return Result{}, fmt.Errorf("%w: %d", game.ErrNegativeState, s)
	}
	return m.memo.get(s, func() (Result, error) {
		return m.solve(ctx, s)
	})
}

func (m *MinThrows) solve(ctx context.Context, s game.State) (Result, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()
	aims := m.cfg.sampler.Aims(m.game.TargetBounds())

	outcomes, err := evaluateAll(ctx, m.cfg.threads, aims,
		func(_ context.Context, aim geometry.Vec2) ([]game.StateProbability, error) {
			return m.game.ThrowOutcomes(aim, s)
		})
	if err != nil {
		return Result{}, err
	}

	values, err := m.lowerValues(ctx, s, slices.Concat(outcomes...))
	if err != nil {
		return Result{}, err
	}

	scores := make([]float64, len(aims))
	for i, outs := range outcomes {
		scores[i] = combine(s, outs, values)
	}
	best := pick(scores, m.Better)
	res := Result{Score: scores[best], Aim: aims[best]}
	if res.Score >= InfiniteScore {
		// every aim is a dead end
		res.Aim = geometry.Origin
	}

	m.cfg.metrics.AimsEvaluated(len(aims))
	m.cfg.metrics.StateSolved(m.Name(), time.Since(start))
	logger.Debug().Int("state", int(s)).Float64("expected-throws", res.Score).
		Stringer("aim", res.Aim).Msg("state-solved")
	return res, nil
}

// lowerValues solves every state other than s that appears in outs,
// lowest first.
func (m *MinThrows) lowerValues(ctx context.Context, s game.State, outs []game.StateProbability) (map[game.State]float64, error) {
	next := lo.Uniq(lo.FilterMap(outs, func(o game.StateProbability, _ int) (game.State, bool) {
		return o.State, o.State != s
	}))
	slices.Sort(next)
	values := make(map[game.State]float64, len(next))
	for _, n := range next {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n > s {
			return nil, fmt.Errorf("%w: %d to %d", game.ErrStateIncreased, s, n)
		}
		r, err := m.Solve(ctx, n)
		if err != nil {
			return nil, err
		}
		values[n] = r.Score
	}
	return values, nil
}

// combine solves the one-step equation for a single aim. An aim that
// almost never leaves s scores InfiniteScore.
func combine(s game.State, outs []game.StateProbability, values map[game.State]float64) float64 {
	same := 0.0
	total := 1.0
	for _, o := range outs {
		if o.State == s {
			same += o.P
			continue
		}
		total += o.P * values[o.State]
	}
	if same >= 1-Epsilon {
		return InfiniteScore
	}
	return math.Min(total/(1-same), InfiniteScore)
}

func (m *MinThrows) SolveAim(ctx context.Context, s game.State, aim geometry.Vec2) (float64, error) {
	if s == 0 {
		return 0, nil
	}
	outs, err := m.game.ThrowOutcomes(aim, s)
	if err != nil {
		return 0, err
	}
	values, err := m.lowerValues(ctx, s, outs)
	if err != nil {
		return 0, err
	}
	return combine(s, outs, values), nil
}
