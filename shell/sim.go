package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bullseye/config"
	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/montecarlo"
)

const (
	defaultHistogramBins  = 20
	defaultHistogramWidth = 50
)

func (sc *ShellController) sim(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: sim <state> [-legs n] [-threads n] [-stop 95|98|99] [-maxthrows n] | sim stop | sim show | sim histogram")
	}
	switch cmd.args[0] {
	case "stop", "show", "histogram":
		return sc.simControlArguments(cmd)
	}
	if sc.simRunning() {
		return nil, errSimming
	}
	start, err := parseState(cmd.args[0])
	if err != nil {
		return nil, err
	}

	stoppingCondition := montecarlo.StopNone
	tolerance := montecarlo.DefaultRelativeTolerance
	for opt := range cmd.options {
		switch opt {
		case "legs", "threads", "maxthrows":
		case "stop":
			sci, ok := montecarlo.ParseStoppingCondition(cmd.options.String(opt))
			if !ok {
				return nil, errors.New("only allowed values are 95, 98, and 99 for stopping condition")
			}
			stoppingCondition = sci
		case "tolerance":
			if tolerance, err = strconv.ParseFloat(cmd.options.String(opt), 64); err != nil {
				return nil, err
			}
			if tolerance <= 0 {
				return nil, errors.New("tolerance must be positive")
			}
		default:
			return nil, errors.New("option " + opt + " not recognized")
		}
	}
	legs, err := cmd.options.IntDefault("legs", sc.config.GetInt(config.ConfigSimLegs))
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", 0)
	if err != nil {
		return nil, err
	}
	maxThrows, err := cmd.options.IntDefault("maxthrows", sc.config.GetInt(config.ConfigSimMaxThrows))
	if err != nil {
		return nil, err
	}
	if legs <= 0 {
		return nil, fmt.Errorf("%w: %d", montecarlo.ErrNoLegs, legs)
	}

	if threads != 0 {
		sc.simmer.SetThreads(threads)
	}
	log.Debug().Int("state", int(start)).Int("legs", legs).Int("threads", sc.simmer.Threads()).
		Stringer("stoppingCondition", stoppingCondition).Msg("will start sim")
	sc.simmer.SetMaxThrows(maxThrows)
	sc.simmer.SetStoppingCondition(stoppingCondition, tolerance)
	sc.startSim(start, legs)
	return msg("Simulation started. Please do `sim show` and `sim histogram` to see more info"), nil
}

func (sc *ShellController) startSim(start game.State, legs int) {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = log.Logger.WithContext(ctx)
	done := make(chan struct{})
	ticker := time.NewTicker(10 * time.Second)
	simmer := sc.simmer

	sc.simMu.Lock()
	sc.simCancel, sc.simDone = cancel, done
	sc.simMu.Unlock()

	go func() {
		defer close(done)
		defer ticker.Stop()
		summary, err := simmer.Simulate(ctx, start, legs)
		if err != nil {
			sc.showError(err)
			return
		}
		sc.simMu.Lock()
		sc.lastSim = &summary
		sc.simMu.Unlock()
		sc.showMessage(summary.String())
		log.Debug().Msg("simulation thread exiting...")
	}()

	go func() {
		for {
			select {
			case <-done:
				log.Debug().Msg("ticker thread exiting...")
				return
			case <-ticker.C:
				log.Info().Msgf("Simmer is at %d legs...", simmer.Iterations())
			}
		}
	}()
}

func (sc *ShellController) simRunning() bool {
	sc.simMu.Lock()
	done := sc.simDone
	sc.simMu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (sc *ShellController) waitForSim() {
	sc.simMu.Lock()
	done := sc.simDone
	sc.simMu.Unlock()
	if done != nil {
		<-done
	}
}

func (sc *ShellController) simControlArguments(cmd *shellcmd) (*Response, error) {
	switch cmd.args[0] {
	case "stop":
		if !sc.simRunning() {
			return nil, errors.New("no running sim to stop")
		}
		sc.simMu.Lock()
		cancel := sc.simCancel
		sc.simMu.Unlock()
		cancel()
		sc.waitForSim()
		return msg("simulation stopped"), nil

	case "show":
		if sc.simRunning() {
			return msg(fmt.Sprintf("simulation running, %d legs so far", sc.simmer.Iterations())), nil
		}
		sc.simMu.Lock()
		last := sc.lastSim
		sc.simMu.Unlock()
		if last == nil {
			return nil, errors.New("no simulation has been run")
		}
		return msg(last.String()), nil

	case "histogram":
		if sc.simRunning() {
			return nil, errSimming
		}
		bins, err := cmd.options.IntDefault("bins", defaultHistogramBins)
		if err != nil {
			return nil, err
		}
		width, err := cmd.options.IntDefault("width", defaultHistogramWidth)
		if err != nil {
			return nil, err
		}
		if bins <= 0 || width <= 0 {
			return nil, errors.New("bins and width must be positive")
		}
		h := sc.simmer.Histogram(bins)
		if h.Count == 0 {
			return nil, errors.New("no finished legs to plot")
		}
		var b strings.Builder
		err = histogram.Fprintf(&b, h, histogram.Linear(width), func(v float64) string {
			return strconv.FormatFloat(v, 'f', 1, 64)
		})
		if err != nil {
			return nil, err
		}
		return msg(strings.TrimRight(b.String(), "\n")), nil
	}
	return nil, errors.New("unknown sim command " + cmd.args[0])
}
