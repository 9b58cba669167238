package game

import "fmt"

// State is the score remaining. The leg is over at 0.
type State int

// Rules decides how a hit changes the remaining score. Implementations
// must never return a state greater than current; the solver's recursion
// depends on it.
type Rules interface {
	Name() string
	HandleThrow(current State, hit HitData) State
}

// FinishOnAny lets any hit finish the leg. Going below zero busts.
type FinishOnAny struct{}

func (FinishOnAny) Name() string {
	return "any"
}

func (FinishOnAny) HandleThrow(current State, hit HitData) State {
	next := int(current) + hit.Delta
	if next < 0 {
		return current
	}
	return State(next)
}

// FinishOnDouble only lets a double finish the leg. Reaching zero any
// other way, or going below zero, busts.
type FinishOnDouble struct{}

func (FinishOnDouble) Name() string {
	return "double"
}

func (FinishOnDouble) HandleThrow(current State, hit HitData) State {
	next := int(current) + hit.Delta
	if next < 0 {
		return current
	}
	if next == 0 && hit.Kind != Double {
		return current
	}
	return State(next)
}

// RulesByName returns the rules registered under name ("any" or "double").
func RulesByName(name string) (Rules, error) {
	switch name {
	case "any":
		return FinishOnAny{}, nil
	case "double":
		return FinishOnDouble{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRules, name)
}
