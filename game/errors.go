package game

import "errors"

var (
	ErrStateIncreased  = errors.New("throw increased the remaining score")
	ErrNegativeState   = errors.New("remaining score cannot be negative")
	ErrNilTarget       = errors.New("game needs a target")
	ErrNilDistribution = errors.New("game needs a distribution")
	ErrNilRules        = errors.New("game needs finishing rules")
	ErrInvalidRegion   = errors.New("bed cannot be integrated by the distribution")
	ErrUnknownRules    = errors.New("unknown finishing rules")
)
