// Package random provides the seeded stream of variates shared by the
// landing model and the random aim sampler.
package random

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
	"lukechampine.com/frand"
)

// DefaultSeed matches the seed used by the command line tools when none
// is configured.
const DefaultSeed int64 = 123456789

// Stream is a reproducible source of uniform and standard-normal variates.
// It is safe for concurrent use; draws are reproducible for a given seed
// as long as a single goroutine consumes them.
type Stream struct {
	seed int64
	src  *frand.Source
	rnd  *rand.Rand
}

func NewStream(seed int64) *Stream {
	src := frand.NewSource()
	src.Seed(seed)
	return &Stream{seed: seed, src: src, rnd: rand.New(src)}
}

func (s *Stream) Seed() int64 {
	return s.seed
}

// StdNormal draws from N(0, 1).
func (s *Stream) StdNormal() float64 {
	return s.rnd.NormFloat64()
}

// NormalPair draws two independent N(0, 1) variates.
func (s *Stream) NormalPair() (float64, float64) {
	return s.rnd.NormFloat64(), s.rnd.NormFloat64()
}

// Uniform draws from [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: s.src}.Rand()
}
