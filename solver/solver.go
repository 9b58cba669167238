// Package solver searches aim space for the best throw in every state.
package solver

import (
	"context"
	"fmt"
	"runtime"

	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/metrics"
)

const (
	// Epsilon is how close to 1 the chance of staying in the same state may
	// get before an aim counts as a dead end.
	Epsilon = 1e-9
	// InfiniteScore is the expected number of throws reported for aims and
	// states that cannot make progress.
	InfiniteScore = 1e9

	DefaultAimSamples = 10000
)

// Result is the best aim found for a state and its score.
type Result struct {
	Score float64       `yaml:"score"`
	Aim   geometry.Vec2 `yaml:"aim"`
}

// Solver scores aims for a state and finds the best one.
type Solver interface {
	Name() string
	// Solve returns the best aim for s among the sampled candidates.
	Solve(ctx context.Context, s game.State) (Result, error)
	// SolveAim scores a single aim for s.
	SolveAim(ctx context.Context, s game.State, aim geometry.Vec2) (float64, error)
	// Better reports whether score a beats score b.
	Better(a, b float64) bool
}

type config struct {
	threads int
	sampler AimSampler
	metrics *metrics.Recorder
}

type Option func(*config)

// WithThreads bounds the goroutines used to evaluate aims.
func WithThreads(n int) Option {
	return func(c *config) {
		c.threads = max(1, n)
	}
}

func WithSampler(s AimSampler) Option {
	return func(c *config) {
		c.sampler = s
	}
}

// WithAimSamples uses a GridSampler with n aims.
func WithAimSamples(n int) Option {
	return func(c *config) {
		c.sampler = GridSampler{Samples: n}
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(c *config) {
		c.metrics = r
	}
}

func buildConfig(opts []Option) (config, error) {
	c := config{
		threads: max(1, runtime.NumCPU()),
		sampler: GridSampler{Samples: DefaultAimSamples},
	}
	for _, opt := range opts {
		opt(&c)
	}
	switch s := c.sampler.(type) {
	case GridSampler:
		if s.Samples <= 0 {
			return c, fmt.Errorf("%w: %d", ErrInvalidSampleCount, s.Samples)
		}
	case RandomSampler:
		if s.Samples <= 0 {
			return c, fmt.Errorf("%w: %d", ErrInvalidSampleCount, s.Samples)
		}
		if s.Stream == nil {
			return c, fmt.Errorf("random sampler needs a stream")
		}
	case nil:
		return c, fmt.Errorf("%w: no sampler", ErrInvalidSampleCount)
	}
	return c, nil
}
