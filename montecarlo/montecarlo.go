// Package montecarlo plays whole legs with a solver's policy to check its
// predictions against sampled throws.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/metrics"
	"github.com/domino14/bullseye/solver"
	"github.com/domino14/bullseye/stats"
)

const DefaultMaxThrows = 1000

// Leg is the record of one simulated leg.
type Leg struct {
	Throws   int
	Finished bool
}

// Summary describes a finished simulation.
type Summary struct {
	Start      game.State
	Legs       int
	Unfinished int
	Mean       float64
	Stdev      float64
	// HalfWidth is the 95% confidence half-width of Mean.
	HalfWidth float64
	Min       float64
	Median    float64
	Max       float64
	Elapsed   time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("state %d: %d legs, mean %.4f ± %.4f throws (sd %.3f, min %.0f, median %.0f, max %.0f), %d unfinished",
		s.Start, s.Legs, s.Mean, s.HalfWidth, s.Stdev, s.Min, s.Median, s.Max, s.Unfinished)
}

// Simulator throws sampled darts at the aims chosen by a policy solver until
// the leg is over.
type Simulator struct {
	game   *game.Game
	policy solver.Solver

	threads       int
	maxThrows     int
	stopping      StoppingCondition
	tolerance     float64
	checkInterval uint64
	metrics       *metrics.Recorder

	simming atomic.Bool
	started atomic.Uint64

	sync.Mutex
	throws     stats.Statistic
	counts     []float64
	unfinished int
}

func NewSimulator(g *game.Game, policy solver.Solver) (*Simulator, error) {
	if g == nil || policy == nil {
		return nil, ErrNoPolicy
	}
	return &Simulator{
		game:          g,
		policy:        policy,
		threads:       max(1, runtime.NumCPU()),
		maxThrows:     DefaultMaxThrows,
		tolerance:     DefaultRelativeTolerance,
		checkInterval: DefaultCheckInterval,
	}, nil
}

func (s *Simulator) SetThreads(threads int) {
	s.threads = max(1, threads)
}

func (s *Simulator) Threads() int {
	return s.threads
}

// SetMaxThrows caps the length of a leg. Legs that hit the cap are
// counted as unfinished and left out of the statistics.
func (s *Simulator) SetMaxThrows(n int) {
	s.maxThrows = max(1, n)
}

func (s *Simulator) SetStoppingCondition(sc StoppingCondition, tolerance float64) {
	s.stopping = sc
	if tolerance > 0 {
		s.tolerance = tolerance
	}
}

func (s *Simulator) SetAutostopCheckInterval(i uint64) {
	s.checkInterval = max(1, i)
}

func (s *Simulator) SetMetrics(r *metrics.Recorder) {
	s.metrics = r
}

func (s *Simulator) IsSimming() bool {
	return s.simming.Load()
}

// Iterations is the number of legs recorded so far by the current or last
// simulation.
func (s *Simulator) Iterations() int {
	s.Lock()
	defer s.Unlock()
	return s.throws.Iterations() + s.unfinished
}

// PlayLeg plays a single leg from start.
func (s *Simulator) PlayLeg(ctx context.Context, start game.State) (Leg, error) {
	state := start
	leg := Leg{}
	for state > 0 && leg.Throws < s.maxThrows {
		if err := ctx.Err(); err != nil {
			return leg, err
		}
		r, err := s.policy.Solve(ctx, state)
		if err != nil {
			return leg, err
		}
		state, err = s.game.SampleThrow(r.Aim, state)
		if err != nil {
			return leg, err
		}
		leg.Throws++
	}
	leg.Finished = state == 0
	return leg, nil
}

func (s *Simulator) reset() {
	s.Lock()
	defer s.Unlock()
	s.throws = stats.Statistic{}
	s.counts = s.counts[:0]
	s.unfinished = 0
	s.started.Store(0)
}

func (s *Simulator) record(leg Leg) *stats.Statistic {
	s.Lock()
	defer s.Unlock()
	if !leg.Finished {
		s.unfinished++
		return &s.throws
	}
	s.throws.Push(float64(leg.Throws))
	s.counts = append(s.counts, float64(leg.Throws))
	return &s.throws
}

// Simulate plays up to legs legs from start on all threads. It returns
// early if ctx is cancelled or the stopping condition is met; neither is
// an error.
func (s *Simulator) Simulate(ctx context.Context, start game.State, legs int) (Summary, error) {
	logger := zerolog.Ctx(ctx)
	if legs <= 0 {
		return Summary{}, fmt.Errorf("%w: %d", ErrNoLegs, legs)
	}
	if !s.simming.CompareAndSwap(false, true) {
		return Summary{}, ErrSimInProgress
	}
	defer s.simming.Store(false)
	s.reset()

	// solve the start state up front so the threads do not all wait on it
	if _, err := s.policy.Solve(ctx, start); err != nil {
		if ctx.Err() != nil {
			logger.Debug().AnErr("ctxErr", ctx.Err()).Msg("sim-cancelled-before-start")
			return Summary{Start: start}, nil
		}
		return Summary{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	tstart := time.Now()

	g := errgroup.Group{}
	for t := range s.threads {
		g.Go(func() error {
			defer func() {
				logger.Debug().Int("thread", t).Msg("sim-thread-exiting")
			}()
			for {
				n := s.started.Add(1)
				if n > uint64(legs) || ctx.Err() != nil {
					return nil
				}
				leg, err := s.PlayLeg(ctx, start)
				if err != nil {
					if errors.Is(err, context.Canceled) && ctx.Err() != nil {
						return nil
					}
					logger.Err(err).Msg("error simming leg; canceling")
					cancel()
					return err
				}
				s.metrics.LegSimulated()
				st := s.record(leg)
				if s.stopping != StopNone && n%s.checkInterval == 0 {
					s.Lock()
					stop := shouldStop(st, s.stopping, s.tolerance)
					s.Unlock()
					if stop {
						logger.Info().Uint64("legs", n).Msg("reached stopping condition")
						cancel()
					}
				}
			}
		})
	}
	err := g.Wait()
	summary := s.summary(start, time.Since(tstart))
	logger.Info().Int("state", int(start)).Int("legs", summary.Legs).
		Float64("mean-throws", summary.Mean).Dur("elapsed", summary.Elapsed).Msg("sim-ended")
	return summary, err
}

func (s *Simulator) summary(start game.State, elapsed time.Duration) Summary {
	s.Lock()
	defer s.Unlock()
	sum := Summary{
		Start:      start,
		Legs:       s.throws.Iterations() + s.unfinished,
		Unfinished: s.unfinished,
		Mean:       s.throws.Mean(),
		Stdev:      s.throws.Stdev(),
		Elapsed:    elapsed,
	}
	if s.throws.Iterations() > 0 {
		sum.HalfWidth = s.throws.StandardError(stats.Z95)
		sum.Min = s.throws.Min()
		sum.Max = s.throws.Max()
		sum.Median = stats.Quantile(0.5, s.counts)
	}
	return sum
}

// Histogram buckets the throw counts of the finished legs of the last
// simulation.
func (s *Simulator) Histogram(bins int) histogram.Histogram {
	s.Lock()
	defer s.Unlock()
	return histogram.Hist(bins, s.counts)
}
