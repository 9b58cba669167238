package distribution

import (
	"fmt"
	"sync/atomic"

	"github.com/domino14/bullseye/geometry"
)

const DefaultMonteCarloSamples = 10000

// MonteCarlo integrates by drawing samples and counting how many land in
// the region. The estimate is unbiased with standard error shrinking as
// 1/sqrt(samples).
type MonteCarlo struct {
	*Normal
	samples atomic.Int64
}

func NewMonteCarlo(n *Normal, samples int) (*MonteCarlo, error) {
	mc := &MonteCarlo{Normal: n}
	if err := mc.SetPrecision(samples); err != nil {
		return nil, err
	}
	return mc, nil
}

// SetPrecision sets the number of samples drawn per integration.
func (mc *MonteCarlo) SetPrecision(samples int) error {
	if samples <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleCount, samples)
	}
	mc.samples.Store(int64(samples))
	return nil
}

func (mc *MonteCarlo) Precision() int {
	return int(mc.samples.Load())
}

func (mc *MonteCarlo) IntegrateProbability(region geometry.Polygon, offset geometry.Vec2) float64 {
	if region.Degenerate() {
		return 0
	}
	g := mc.current()
	n := mc.samples.Load()
	box := region.Bounds()
	hits := int64(0)
	for range n {
		p := g.sample(mc.stream).Add(offset)
		if box.Contains(p) && region.Contains(p) {
			hits++
		}
	}
	return float64(hits) / float64(n)
}
