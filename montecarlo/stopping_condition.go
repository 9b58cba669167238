package montecarlo

import (
	"github.com/domino14/bullseye/stats"
)

type StoppingCondition int

const (
	StopNone StoppingCondition = iota
	Stop95
	Stop98
	Stop99
)

const (
	// DefaultRelativeTolerance is the confidence half-width, as a fraction
	// of the mean, below which an auto-stopping sim ends.
	DefaultRelativeTolerance = 0.01
	DefaultCheckInterval     = 500
	// MinLegsBeforeStopping keeps a lucky run of identical legs from
	// ending the sim on its first check.
	MinLegsBeforeStopping = 100
)

func (sc StoppingCondition) z() float64 {
	switch sc {
	case Stop95:
		return stats.Z95
	case Stop98:
		return stats.Z98
	case Stop99:
		return stats.Z99
	}
	return 0
}

func (sc StoppingCondition) String() string {
	switch sc {
	case Stop95:
		return "95"
	case Stop98:
		return "98"
	case Stop99:
		return "99"
	}
	return "none"
}

// ParseStoppingCondition accepts "none", "95", "98" or "99".
func ParseStoppingCondition(s string) (StoppingCondition, bool) {
	for _, sc := range []StoppingCondition{StopNone, Stop95, Stop98, Stop99} {
		if sc.String() == s {
			return sc, true
		}
	}
	return StopNone, false
}

// shouldStop reports whether the mean throw count is known to within
// tolerance (relative to the mean) at the confidence level of sc.
func shouldStop(st *stats.Statistic, sc StoppingCondition, tolerance float64) bool {
	if sc == StopNone || st.Iterations() < MinLegsBeforeStopping {
		return false
	}
	mean := st.Mean()
	if mean <= 0 {
		return false
	}
	return st.StandardError(sc.z()) <= tolerance*mean
}
