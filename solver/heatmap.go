package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
)

// HeatMap scores every cell centre of a rows x cols grid over the board
// with a solver's SolveAim. Grids are kept per state.
type HeatMap struct {
	solver Solver
	bounds geometry.Rect
	rows   int
	cols   int
	cfg    config
	memo   *memo[[][]float64]
}

func NewHeatMap(s Solver, bounds geometry.Rect, rows, cols int, opts ...Option) (*HeatMap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, cols)
	}
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	return &HeatMap{
		solver: s,
		bounds: bounds,
		rows:   rows,
		cols:   cols,
		cfg:    cfg,
		memo:   newMemo[[][]float64](),
	}, nil
}

func (h *HeatMap) Dims() (rows, cols int) {
	return h.rows, h.cols
}

func (h *HeatMap) Solver() Solver {
	return h.solver
}

// Cell is the centre of column i, row j. Row 0 is at the bottom.
func (h *HeatMap) Cell(i, j int) geometry.Vec2 {
	return h.bounds.Lerp(
		(float64(i)+0.5)/float64(h.cols),
		(float64(j)+0.5)/float64(h.rows))
}

// Grid returns scores indexed [row][col] for state s.
func (h *HeatMap) Grid(ctx context.Context, s game.State) ([][]float64, error) {
	return h.memo.get(s, func() ([][]float64, error) {
		// solving s first caches most of the lower states the cells need
		if mt, ok := h.solver.(*MinThrows); ok {
			if _, err := mt.Solve(ctx, s); err != nil {
				return nil, err
			}
		}
		aims := make([]geometry.Vec2, 0, h.rows*h.cols)
		for j := range h.rows {
			for i := range h.cols {
				aims = append(aims, h.Cell(i, j))
			}
		}
		scores, err := evaluateAll(ctx, h.cfg.threads, aims, func(ctx context.Context, aim geometry.Vec2) (float64, error) {
			return h.solver.SolveAim(ctx, s, aim)
		})
		if err != nil {
			return nil, err
		}
		grid := make([][]float64, h.rows)
		for j := range grid {
			grid[j] = scores[j*h.cols : (j+1)*h.cols]
		}
		zerolog.Ctx(ctx).Debug().Int("state", int(s)).Int("cells", len(aims)).Msg("heatmap-computed")
		return grid, nil
	})
}

// Range returns the smallest and largest finite scores in a grid. Cells
// at InfiniteScore are skipped.
func Range(grid [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range grid {
		for _, v := range row {
			if v >= InfiniteScore || math.IsNaN(v) {
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	return lo, hi
}
