package shell

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/domino14/bullseye/config"
	"github.com/domino14/bullseye/solver"
	"github.com/domino14/bullseye/stats"
)

const (
	resetColor      = "\033[0m"
	unwinnableColor = "\033[48;5;52m"
)

// getHeatColor returns an ANSI escape sequence for a given heat level.
func getHeatColor(fraction float64) string {
	// Map the fraction (0 to 1) to grayscale colors (232 to 255 in ANSI 256-color palette)
	// 232 is darkest (black), 255 is lightest (white)
	start := 232
	end := 255
	colorCode := int(float64(start) + fraction*float64(end-start))
	return fmt.Sprintf("\033[48;5;%dm", colorCode) // Background color
}

// renderHeatMap draws one cell per grid entry, top row first, lighter for
// better scores. Unwinnable cells are dark red.
func renderHeatMap(grid [][]float64, better func(a, b float64) bool) string {
	lo, hi := solver.Range(grid)
	var b strings.Builder
	for j := len(grid) - 1; j >= 0; j-- {
		for _, v := range grid[j] {
			if v >= solver.InfiniteScore || math.IsNaN(v) {
				b.WriteString(unwinnableColor + "  " + resetColor)
				continue
			}
			frac := 1.0
			if !stats.FuzzyEqual(hi, lo) {
				frac = (v - lo) / (hi - lo)
			}
			if better(lo, hi) {
				frac = 1 - frac
			}
			b.WriteString(getHeatColor(frac) + "  " + resetColor)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// heatMapKey identifies a heat map kept between commands. Kept maps
// are dropped whenever the game is rebuilt.
type heatMapKey struct {
	solver     string
	rows, cols int
}

func (sc *ShellController) heatMap(s solver.Solver, rows, cols int) (*solver.HeatMap, error) {
	key := heatMapKey{s.Name(), rows, cols}
	if hm, ok := sc.heatMaps[key]; ok {
		return hm, nil
	}
	opts, err := sc.config.SolverOptions(sc.stream, sc.metrics)
	if err != nil {
		return nil, err
	}
	hm, err := solver.NewHeatMap(s, sc.game.TargetBounds(), rows, cols, opts...)
	if err != nil {
		return nil, err
	}
	sc.heatMaps[key] = hm
	return hm, nil
}

func (sc *ShellController) heatmap(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: heatmap <state> [-rows n] [-cols n] [-solver min-throws|max-points]")
	}
	st, err := parseState(cmd.args[0])
	if err != nil {
		return nil, err
	}
	s, err := sc.solverNamed(cmd.options.String("solver"))
	if err != nil {
		return nil, err
	}
	rows, err := cmd.options.IntDefault("rows", sc.config.GetInt(config.ConfigHeatmapRows))
	if err != nil {
		return nil, err
	}
	cols, err := cmd.options.IntDefault("cols", sc.config.GetInt(config.ConfigHeatmapCols))
	if err != nil {
		return nil, err
	}
	hm, err := sc.heatMap(s, rows, cols)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	grid, err := hm.Grid(ctx, st)
	if err != nil {
		return nil, err
	}
	best, err := s.Solve(ctx, st)
	if err != nil {
		return nil, err
	}
	lo, hi := solver.Range(grid)

	var b strings.Builder
	b.WriteString(renderHeatMap(grid, hm.Solver().Better))
	fmt.Fprintf(&b, "%s from %d: best %.5f at %v; grid range %.5f to %.5f", hm.Solver().Name(), st,
		best.Score, best.Aim, lo, hi)
	return msg(b.String()), nil
}
