// Package metrics counts the work done by the game caches and the solvers.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bullseye"

// Recorder holds the counters for one solver setup. All methods are safe
// to call on a nil *Recorder, which records nothing.
type Recorder struct {
	registry *prometheus.Registry

	outcomeCacheHits   prometheus.Counter
	outcomeCacheMisses prometheus.Counter
	bedsIntegrated     prometheus.Counter
	aimsEvaluated      prometheus.Counter
	statesSolved       *prometheus.CounterVec
	solveDuration      *prometheus.HistogramVec
	legsSimulated      prometheus.Counter
}

// NewRecorder registers its collectors on a private registry so several
// recorders can coexist in one process.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)
	return &Recorder{
		registry: reg,
		outcomeCacheHits: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "outcome_cache_hits_total",
			Help:      "Outcome distributions served from the per-aim cache",
		}),
		outcomeCacheMisses: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "outcome_cache_misses_total",
			Help:      "Outcome distributions computed by integration",
		}),
		bedsIntegrated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "beds_integrated_total",
			Help:      "Bed integrations performed",
		}),
		aimsEvaluated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "aims_evaluated_total",
			Help:      "Candidate aims scored by a solver",
		}),
		statesSolved: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "states_solved_total",
			Help:      "States solved, by strategy",
		}, []string{"strategy"}),
		solveDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "solve_duration_seconds",
			Help:      "Time to solve one state, excluding lower states already cached",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"strategy"}),
		legsSimulated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "legs_simulated_total",
			Help:      "Legs played to completion by the simulator",
		}),
	}
}

func (r *Recorder) OutcomeCacheHit() {
	if r == nil {
		return
	}
	r.outcomeCacheHits.Inc()
}

func (r *Recorder) OutcomeCacheMiss(beds int) {
	if r == nil {
		return
	}
	r.outcomeCacheMisses.Inc()
	r.bedsIntegrated.Add(float64(beds))
}

func (r *Recorder) AimsEvaluated(n int) {
	if r == nil {
		return
	}
	r.aimsEvaluated.Add(float64(n))
}

func (r *Recorder) StateSolved(strategy string, d time.Duration) {
	if r == nil {
		return
	}
	r.statesSolved.WithLabelValues(strategy).Inc()
	r.solveDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (r *Recorder) LegSimulated() {
	if r == nil {
		return
	}
	r.legsSimulated.Inc()
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Summary renders every counter and histogram count as "name value" lines.
func (r *Recorder) Summary() (string, error) {
	if r == nil {
		return "", nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return "", err
	}
	var lines []string
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			name := fam.GetName()
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%-70s %.0f", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%-70s n=%d sum=%.3fs",
					name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}
