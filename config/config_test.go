package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/bullseye/board"
	"github.com/domino14/bullseye/distribution"
	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/random"
	"github.com/domino14/bullseye/solver"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load(nil))
	is.Equal(c.GetString(ConfigFinishRule), "double")
	is.Equal(c.GetInt(ConfigAimSamples), solver.DefaultAimSamples)
	is.Equal(c.GetInt64(ConfigSeed), random.DefaultSeed)
	is.Equal(c.GetInt(ConfigHeatmapRows), 100)
	is.Equal(c.Covariance(), distribution.Isotropic(1600))

	r, err := c.Rules()
	is.NoErr(err)
	is.Equal(r, game.Rules(game.FinishOnDouble{}))

	m, err := c.Integration()
	is.NoErr(err)
	is.Equal(m, IntegrationQuadrature)
}

func TestFlagsAndEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("DARTS_SIGMA_XX", "400")
	t.Setenv("DARTS_FINISH_RULE", "double")
	c := &Config{}
	is.NoErr(c.Load([]string{"--finish-rule", "any", "--aim-samples=64", "solve", "40"}))

	// flags beat the environment
	is.Equal(c.GetString(ConfigFinishRule), "any")
	is.Equal(c.GetFloat64(ConfigSigmaXX), 400.0)
	is.Equal(c.GetInt(ConfigAimSamples), 64)
	is.Equal(c.Args(), []string{"solve", "40"})
}

func TestConfigFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "darts.yaml")
	is.NoErr(os.WriteFile(path, []byte("integration: montecarlo\nmc-samples: 500\nthreads: 3\n"), 0644))
	c := &Config{}
	is.NoErr(c.Load([]string{"--config", path}))
	is.Equal(c.GetString(ConfigIntegration), IntegrationMonteCarlo)

	dist, err := c.Distribution(random.NewStream(1))
	is.NoErr(err)
	mc, ok := dist.(*distribution.MonteCarlo)
	is.True(ok)
	is.Equal(mc.Precision(), 500)

	missing := &Config{}
	is.True(missing.Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}) != nil)
}

func TestInvalidValues(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load([]string{"--finish-rule", "triple", "--integration", "guess", "--aim-sampler", "spiral"}))

	_, err := c.Rules()
	is.True(errors.Is(err, ErrUnknownRule))
	is.True(errors.Is(err, game.ErrUnknownRules))
	_, err = c.Integration()
	is.True(errors.Is(err, ErrUnknownIntegration))
	_, err = c.Distribution(random.NewStream(1))
	is.True(errors.Is(err, ErrUnknownIntegration))
	_, err = c.Sampler(random.NewStream(1))
	is.True(errors.Is(err, ErrUnknownSampler))

	is.True(c.Load([]string{"--no-such-flag"}) != nil)
}

func TestBuild(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "ring.txt")
	is.NoErr(board.SaveFile(path, board.Ring(8)))

	c := &Config{}
	is.NoErr(c.Load([]string{"--board-path", path, "--finish-rule", "any",
		"--sigma-xx", "100", "--sigma-yy", "100", "--aim-samples", "100",
		"--aim-sampler", "random", "--threads", "2"}))

	def, err := c.Board()
	is.NoErr(err)
	is.Equal(len(def.Beds), 17)

	stream := c.Stream()
	dist, err := c.Distribution(stream)
	is.NoErr(err)
	g, err := c.Game(def, dist, nil)
	is.NoErr(err)
	opts, err := c.SolverOptions(stream, nil)
	is.NoErr(err)
	mt, err := solver.NewMinThrows(g, opts...)
	is.NoErr(err)
	r, err := mt.Solve(t.Context(), 20)
	is.NoErr(err)
	is.True(r.Score >= 1)

	// the regulation board when no path is given
	c = &Config{}
	is.NoErr(c.Load([]string{"--board-subdivisions", "1"}))
	def, err = c.Board()
	is.NoErr(err)
	is.Equal(len(def.Beds), 101)

	_, err = WrapNormal(nil, "other", 10)
	is.True(errors.Is(err, ErrUnknownIntegration))
}
