package distribution

import "errors"

var (
	ErrNotPositiveDefinite  = errors.New("covariance is not positive definite")
	ErrAsymmetricCovariance = errors.New("covariance is not symmetric")
	ErrNoPoints             = errors.New("cannot fit a distribution to zero points")
	ErrNonConvexRegion      = errors.New("quadrature requires a convex region")
	ErrInvalidSampleCount   = errors.New("sample count must be positive")
)
