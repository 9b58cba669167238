package solver

import "errors"

var (
	ErrInvalidSampleCount = errors.New("aim sample count must be positive")
	ErrInvalidGrid        = errors.New("heat map grid must have positive dimensions")
	ErrInvalidRange       = errors.New("state range is empty")
)
