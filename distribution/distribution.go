// Package distribution models where a dart lands relative to the point
// it was aimed at, and integrates that landing density over board regions.
package distribution

import (
	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/random"
)

// Distribution is a landing model expressed in the thrower's own frame:
// a sample of (0, 0) means the dart landed exactly on the aim point.
type Distribution interface {
	// Sample draws one landing offset.
	Sample() geometry.Vec2
	// Density evaluates the landing density at an offset.
	Density(p geometry.Vec2) float64
	// IntegrateProbability returns the probability that a dart aimed at
	// offset lands inside region, i.e. P(sample + offset in region).
	IntegrateProbability(region geometry.Polygon, offset geometry.Vec2) float64
	// AddPoint records an observed landing offset and refits the model.
	AddPoint(p geometry.Vec2) error
}

// RegionValidator is implemented by distributions whose integration
// strategy only supports some regions. Callers that hold a fixed set of
// regions should check each one up front.
type RegionValidator interface {
	ValidateRegion(region geometry.Polygon) error
}

type options struct {
	stream *random.Stream
}

type Option func(*options)

// WithStream sets the random stream used for sampling. Without it each
// distribution gets its own stream seeded with random.DefaultSeed.
func WithStream(s *random.Stream) Option {
	return func(o *options) {
		o.stream = s
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.stream == nil {
		o.stream = random.NewStream(random.DefaultSeed)
	}
	return o
}
