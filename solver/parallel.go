package solver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/domino14/bullseye/geometry"
)

// evaluateAll runs fn on every aim with at most threads goroutines and
// returns the results in aim order.
func evaluateAll[T any](ctx context.Context, threads int, aims []geometry.Vec2,
	fn func(context.Context, geometry.Vec2) (T, error)) ([]T, error) {

	out := make([]T, len(aims))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, threads))
	for i, aim := range aims {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, aim)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// pick returns the index of the best score, preferring the earliest on
// ties so results do not depend on scheduling.
func pick(scores []float64, better func(a, b float64) bool) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if better(scores[i], scores[best]) {
			best = i
		}
	}
	return best
}
