package config

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/domino14/bullseye/board"
	"github.com/domino14/bullseye/distribution"
	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/metrics"
	"github.com/domino14/bullseye/random"
	"github.com/domino14/bullseye/solver"
)

func (c *Config) Rules() (game.Rules, error) {
	r, err := game.RulesByName(c.GetString(ConfigFinishRule))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownRule, err)
	}
	return r, nil
}

func (c *Config) Integration() (string, error) {
	switch m := c.GetString(ConfigIntegration); m {
	case IntegrationQuadrature, IntegrationMonteCarlo:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownIntegration, m)
	}
}

func (c *Config) Mean() geometry.Vec2 {
	return geometry.Vec2{X: c.GetFloat64(ConfigMeanX), Y: c.GetFloat64(ConfigMeanY)}
}

func (c *Config) Stream() *random.Stream {
	return random.NewStream(c.GetInt64(ConfigSeed))
}

// Board loads board-path, or builds the regulation board when it is empty.
func (c *Config) Board() (board.Definition, error) {
	if path := c.GetString(ConfigBoardPath); path != "" {
		log.Debug().Str("path", filepath.Clean(path)).Msg("loading-board")
		return board.LoadFile(path)
	}
	return board.Standard(c.GetInt(ConfigBoardSubdivisions))
}

func (c *Config) Distribution(stream *random.Stream) (distribution.Distribution, error) {
	method, err := c.Integration()
	if err != nil {
		return nil, err
	}
	n, err := distribution.NewNormal(c.Mean(), c.Covariance(), distribution.WithStream(stream))
	if err != nil {
		return nil, err
	}
	return WrapNormal(n, method, c.GetInt(ConfigMCSamples))
}

// WrapNormal puts an integration strategy in front of a Gaussian.
func WrapNormal(n *distribution.Normal, method string, mcSamples int) (distribution.Distribution, error) {
	switch method {
	case IntegrationQuadrature:
		return distribution.NewQuadrature(n), nil
	case IntegrationMonteCarlo:
		mc, err := distribution.NewMonteCarlo(n, mcSamples)
		if err != nil {
			return nil, err
		}
		return mc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIntegration, method)
}

func (c *Config) Game(def board.Definition, dist distribution.Distribution, rec *metrics.Recorder) (*game.Game, error) {
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	return game.NewGame(def.Target(), dist, rules, game.WithMetrics(rec))
}

func (c *Config) Sampler(stream *random.Stream) (solver.AimSampler, error) {
	n := c.GetInt(ConfigAimSamples)
	switch s := c.GetString(ConfigAimSampler); s {
	case SamplerGrid:
		return solver.GridSampler{Samples: n}, nil
	case SamplerRandom:
		return solver.RandomSampler{Samples: n, Stream: stream}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSampler, s)
	}
}

// SolverOptions collects the solver settings shared by every strategy.
func (c *Config) SolverOptions(stream *random.Stream, rec *metrics.Recorder) ([]solver.Option, error) {
	sampler, err := c.Sampler(stream)
	if err != nil {
		return nil, err
	}
	opts := []solver.Option{solver.WithSampler(sampler), solver.WithMetrics(rec)}
	if t := c.GetInt(ConfigThreads); t > 0 {
		opts = append(opts, solver.WithThreads(t))
	}
	return opts, nil
}
