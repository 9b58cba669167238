// Package config loads the solver settings from flags, DARTS_ environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/bullseye/board"
	"github.com/domino14/bullseye/distribution"
	"github.com/domino14/bullseye/random"
	"github.com/domino14/bullseye/solver"
)

const (
	ConfigDebug             = "debug"
	ConfigFile              = "config"
	ConfigBoardPath         = "board-path"
	ConfigBoardSubdivisions = "board-subdivisions"
	ConfigFinishRule        = "finish-rule"
	ConfigIntegration       = "integration"
	ConfigMCSamples         = "mc-samples"
	ConfigSigmaXX           = "sigma-xx"
	ConfigSigmaXY           = "sigma-xy"
	ConfigSigmaYY           = "sigma-yy"
	ConfigMeanX             = "mean-x"
	ConfigMeanY             = "mean-y"
	ConfigAimSamples        = "aim-samples"
	ConfigAimSampler        = "aim-sampler"
	ConfigHeatmapRows       = "heatmap-rows"
	ConfigHeatmapCols       = "heatmap-cols"
	ConfigThreads           = "threads"
	ConfigSeed              = "seed"
	ConfigSimLegs           = "sim-legs"
	ConfigSimMaxThrows      = "sim-max-throws"
	ConfigHistoryFile       = "history-file"
	ConfigCPUProfile        = "cpu-profile"
	ConfigMemProfile        = "mem-profile"
)

const (
	IntegrationQuadrature = "quadrature"
	IntegrationMonteCarlo = "montecarlo"

	SamplerGrid   = "grid"
	SamplerRandom = "random"

	EnvPrefix = "DARTS"
)

var (
	ErrUnknownRule        = errors.New("unknown finish rule")
	ErrUnknownIntegration = errors.New("unknown integration method")
	ErrUnknownSampler     = errors.New("unknown aim sampler")
)

type Config struct {
	*viper.Viper
	flags *pflag.FlagSet
}

func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.SetEnvPrefix(EnvPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	fs := pflag.NewFlagSet("dartsolver", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigFile, "", "optional YAML config file")
	fs.String(ConfigBoardPath, "", "board file (text or .yaml); the regulation board if empty")
	fs.Int(ConfigBoardSubdivisions, board.DefaultSubdivisions, "slices per sector of the regulation board")
	fs.String(ConfigFinishRule, "double", "finish rule: any or double")
	fs.String(ConfigIntegration, IntegrationQuadrature, "integration: quadrature or montecarlo")
	fs.Int(ConfigMCSamples, distribution.DefaultMonteCarloSamples, "samples per Monte Carlo integral")
	fs.Float64(ConfigSigmaXX, 1600, "landing covariance xx (mm^2)")
	fs.Float64(ConfigSigmaXY, 0, "landing covariance xy (mm^2)")
	fs.Float64(ConfigSigmaYY, 1600, "landing covariance yy (mm^2)")
	fs.Float64(ConfigMeanX, 0, "landing bias x (mm)")
	fs.Float64(ConfigMeanY, 0, "landing bias y (mm)")
	fs.Int(ConfigAimSamples, solver.DefaultAimSamples, "candidate aims per state")
	fs.String(ConfigAimSampler, SamplerGrid, "aim sampler: grid or random")
	fs.Int(ConfigHeatmapRows, 100, "heat map rows")
	fs.Int(ConfigHeatmapCols, 100, "heat map columns")
	fs.Int(ConfigThreads, 0, "worker goroutines; 0 means one per CPU")
	fs.Int64(ConfigSeed, random.DefaultSeed, "random seed")
	fs.Int(ConfigSimLegs, 10000, "legs per simulation")
	fs.Int(ConfigSimMaxThrows, 1000, "throws after which a simulated leg is abandoned")
	fs.String(ConfigHistoryFile, "", "shell history file")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a heap profile to this file on exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.flags = fs

	if path := c.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return nil
}

// Args are the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	if c.flags == nil {
		return nil
	}
	return c.flags.Args()
}

// FlagUsages is the flag help text.
func (c *Config) FlagUsages() string {
	if c.flags == nil {
		return ""
	}
	return c.flags.FlagUsages()
}

func (c *Config) Covariance() distribution.Covariance {
	return distribution.Covariance{
		{c.GetFloat64(ConfigSigmaXX), c.GetFloat64(ConfigSigmaXY)},
		{c.GetFloat64(ConfigSigmaXY), c.GetFloat64(ConfigSigmaYY)},
	}
}
