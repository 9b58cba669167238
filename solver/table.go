package solver

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/domino14/bullseye/game"
)

// Row is one line of a strategy table.
type Row struct {
	State  game.State `yaml:"state"`
	Result `yaml:",inline"`
}

// Table solves every state from..to inclusive, lowest first so each state
// reuses the ones below it.
func Table(ctx context.Context, s Solver, from, to game.State) ([]Row, error) {
	if from > to || from < 0 {
		return nil, fmt.Errorf("%w: %d..%d", ErrInvalidRange, from, to)
	}
	rows := make([]Row, 0, to-from+1)
	for st := from; st <= to; st++ {
		r, err := s.Solve(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("state %d: %w", st, err)
		}
		rows = append(rows, Row{State: st, Result: r})
	}
	return rows, nil
}

// Strategy is the YAML document written by WriteTable.
type Strategy struct {
	Solver string `yaml:"solver"`
	Rules  string `yaml:"rules"`
	Rows   []Row  `yaml:"states"`
}

func WriteTable(w io.Writer, st Strategy) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(st); err != nil {
		return err
	}
	return enc.Close()
}

func ReadTable(r io.Reader) (Strategy, error) {
	var st Strategy
	err := yaml.NewDecoder(r).Decode(&st)
	return st, err
}
