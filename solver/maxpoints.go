package solver

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
)

// MaxPoints greedily maximises the expected score taken off in one throw.
// It looks one throw ahead only; busts count as zero points.
type MaxPoints struct {
	game *game.Game
	cfg  config
	memo *memo[Result]
}

func NewMaxPoints(g *game.Game, opts ...Option) (*MaxPoints, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	return &MaxPoints{game: g, cfg: cfg, memo: newMemo[Result]()}, nil
}

func (m *MaxPoints) Name() string {
	return "max-points"
}

func (m *MaxPoints) Better(a, b float64) bool {
	return a > b
}

func (m *MaxPoints) SolveAim(_ context.Context, s game.State, aim geometry.Vec2) (float64, error) {
	outs, err := m.game.ThrowOutcomes(aim, s)
	if err != nil {
		return 0, err
	}
	expected := 0.0
	for _, o := range outs {
		expected += float64(s-o.State) * o.P
	}
	return expected, nil
}

func (m *MaxPoints) Solve(ctx context.Context, s game.State) (Result, error) {
	if s == 0 {
		return Result{Score: 0, Aim: geometry.Origin}, nil
	}
	return m.memo.get(s, func() (Result, error) {
		start := time.Now()
		aims := m.cfg.sampler.Aims(m.game.TargetBounds())
		scores, err := evaluateAll(ctx, m.cfg.threads, aims, func(ctx context.Context, aim geometry.Vec2) (float64, error) {
			return m.SolveAim(ctx, s, aim)
		})
		if err != nil {
			return Result{}, err
		}
		best := pick(scores, m.Better)
		res := Result{Score: scores[best], Aim: aims[best]}
		m.cfg.metrics.AimsEvaluated(len(aims))
		m.cfg.metrics.StateSolved(m.Name(), time.Since(start))
		zerolog.Ctx(ctx).Debug().Int("state", int(s)).Float64("expected-points", res.Score).
			Stringer("aim", res.Aim).Msg("state-solved")
		return res, nil
	})
}
