// Package stats keeps running summaries of simulated legs.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean and variance (Welford's algorithm). It is
// not safe for concurrent use.
type Statistic struct {
	n    int
	last float64
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (s *Statistic) Push(val float64) {
	s.last = val
	s.n++
	if s.n == 1 {
		s.mean = val
		s.m2 = 0
		s.min, s.max = val, val
		return
	}
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
	s.min = min(s.min, val)
	s.max = max(s.max, val)
}

func (s *Statistic) Mean() float64 {
	if s.n > 0 {
		return s.mean
	}
	return 0.0
}

// Variance is the sample variance.
func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) Last() float64 {
	return s.last
}

func (s *Statistic) Min() float64 {
	return s.min
}

func (s *Statistic) Max() float64 {
	return s.max
}

// StandardError is the standard error of the mean scaled by z, i.e. the
// half-width of the confidence interval for that z-value.
func (s *Statistic) StandardError(z float64) float64 {
	if s.n == 0 {
		return math.Inf(1)
	}
	return z * math.Sqrt(s.Variance()/float64(s.n))
}

func (s *Statistic) Iterations() int {
	return s.n
}

// Quantile returns the empirical p-quantile of values, 0 <= p <= 1. It
// does not modify values.
func Quantile(p float64, values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
