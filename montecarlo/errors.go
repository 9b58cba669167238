package montecarlo

import "errors"

var (
	ErrNoLegs        = errors.New("number of legs must be positive")
	ErrNoPolicy      = errors.New("simulator needs a game and a policy solver")
	ErrSimInProgress = errors.New("a simulation is already running")
)
