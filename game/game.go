// Package game turns a landing model and a board into probabilities over
// the next remaining score.
package game

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/bullseye/distribution"
	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/metrics"
)

// BoundsPadding is the fraction of each axis extent added on both sides of
// the board's bounding box.
const BoundsPadding = 0.1

type HitProbability struct {
	Hit HitData
	P   float64
}

type StateProbability struct {
	State State
	P     float64
}

// Game couples a board, a landing model and finishing rules. It caches the
// hit distribution of every aim point it is asked about; those caches
// live as long as the Game. A Game is safe for concurrent use.
type Game struct {
	target *Target
	dist   distribution.Distribution
	rules  Rules

	metrics  *metrics.Recorder
	outcomes *outcomeCache

	boundsOnce sync.Once
	bounds     geometry.Rect
}

type Option func(*Game)

func WithMetrics(r *metrics.Recorder) Option {
	return func(g *Game) {
		g.metrics = r
	}
}

// NewGame validates its collaborators. If the distribution can only
// integrate some regions (quadrature needs convex beds), every bed is
// checked here.
func NewGame(target *Target, dist distribution.Distribution, rules Rules, opts ...Option) (*Game, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	if dist == nil {
		return nil, ErrNilDistribution
	}
	if rules == nil {
		return nil, ErrNilRules
	}
	if v, ok := dist.(distribution.RegionValidator); ok {
		for i, b := range target.Beds() {
			if err := v.ValidateRegion(b.Shape); err != nil {
				return nil, fmt.Errorf("%w: bed %d (%v): %w", ErrInvalidRegion, i, b.Hit, err)
			}
		}
	}
	g := &Game{
		target:   target,
		dist:     dist,
		rules:    rules,
		outcomes: newOutcomeCache(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Game) Target() *Target {
	return g.target
}

func (g *Game) Distribution() distribution.Distribution {
	return g.dist
}

func (g *Game) Rules() Rules {
	return g.rules
}

// CachedAims is the number of aim points whose hit distribution is cached.
func (g *Game) CachedAims() int {
	return g.outcomes.len()
}

// OutcomeDistribution returns the probability of every hit outcome when
// aiming at aim, ordered by HitData.Less. The probabilities sum to 1; any
// mass not landing in a bed is a Miss. Outcomes with zero probability are
// left out.
func (g *Game) OutcomeDistribution(aim geometry.Vec2) []HitProbability {
	return slices.Clone(g.outcomeDistribution(aim))
}

func (g *Game) outcomeDistribution(aim geometry.Vec2) []HitProbability {
	if v, ok := g.outcomes.get(aim); ok {
		g.metrics.OutcomeCacheHit()
		return v
	}
	g.metrics.OutcomeCacheMiss(len(g.target.Beds()))
	return g.outcomes.put(aim, g.integrate(aim))
}

func (g *Game) integrate(aim geometry.Vec2) []HitProbability {
	byHit := make(map[HitData]float64)
	total := 0.0
	for _, b := range g.target.Beds() {
		p := g.dist.IntegrateProbability(b.Shape, aim)
		byHit[b.Hit] += p
		total += p
	}
	if total > 1 {
		// overlapping beds or integration error; scale back onto the simplex
		log.Debug().Float64("total", total).Stringer("aim", aim).Msg("bed-mass-exceeds-one")
		for h := range byHit {
			byHit[h] /= total
		}
		total = 1
	}
	byHit[Miss] += 1 - total

	hits := lo.Keys(byHit)
	slices.SortFunc(hits, func(a, b HitData) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	out := make([]HitProbability, 0, len(hits))
	for _, h := range hits {
		if byHit[h] <= 0 {
			continue
		}
		out = append(out, HitProbability{Hit: h, P: byHit[h]})
	}
	return out
}

// ThrowOutcomes returns the distribution over the next state when aiming
// at aim with current remaining, ordered by state. It fails if the rules
// ever produce a state above current.
func (g *Game) ThrowOutcomes(aim geometry.Vec2, current State) ([]StateProbability, error) {
	if current < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeState, current)
	}
	byState := make(map[State]float64)
	for _, hp := range g.outcomeDistribution(aim) {
		next, err := g.next(current, hp.Hit)
		if err != nil {
			return nil, err
		}
		byState[next] += hp.P
	}
	states := lo.Keys(byState)
	slices.Sort(states)
	return lo.Map(states, func(s State, _ int) StateProbability {
		return StateProbability{State: s, P: byState[s]}
	}), nil
}

// SampleThrow simulates one throw at aim and returns the resulting state.
func (g *Game) SampleThrow(aim geometry.Vec2, current State) (State, error) {
	if current < 0 {
		return current, fmt.Errorf("%w: %d", ErrNegativeState, current)
	}
	landing := g.dist.Sample().Add(aim)
	return g.next(current, g.target.HitOutcome(landing))
}

func (g *Game) next(current State, hit HitData) (State, error) {
	next := g.rules.HandleThrow(current, hit)
	if next > current || next < 0 {
		return current, fmt.Errorf("%w: %s rules took %d to %d on %v",
			ErrStateIncreased, g.rules.Name(), current, next, hit)
	}
	return next, nil
}

// TargetBounds is the padded bounding box of every bed vertex. It is
// computed on first use.
func (g *Game) TargetBounds() geometry.Rect {
	g.boundsOnce.Do(func() {
		g.bounds = g.target.Extent().Pad(BoundsPadding)
	})
	return g.bounds
}
