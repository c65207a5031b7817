package validation

import (
	"fmt"
	"math"
)

// ValidateSolverParameters checks the numeric solver settings.
func ValidateSolverParameters(gamma, tMin, accuracy float64, maxIterations int) error {
	switch {
	case math.IsNaN(gamma) || math.IsInf(gamma, 0) || gamma < 0:
		return fmt.Errorf("gamma must be a non-negative number, got %g", gamma)
	case math.IsNaN(tMin) || math.IsInf(tMin, 0) || tMin <= 0:
		return fmt.Errorf("t-min must be a positive number, got %g", tMin)
	case math.IsNaN(accuracy) || accuracy <= 0:
		return fmt.Errorf("solver accuracy must be a positive number, got %g", accuracy)
	case maxIterations <= 0:
		return fmt.Errorf("solver max iterations must be positive, got %d", maxIterations)
	}
	return nil
}

// PortionBounds is the part of a requirement the bound checks look at.
type PortionBounds struct {
	Name   string
	Lower  float64
	Upper  float64
	Target float64
}

// RequirementWarnings returns non-fatal observations about a problem
// instance: bounds that will only be penalised because they cannot be met
// exactly, and targets outside their own interval.
func RequirementWarnings(total float64, portions []PortionBounds) []string {
	var warnings []string

	lowerSum, upperSum := 0.0, 0.0
	for _, p := range portions {
		lowerSum += p.Lower
		upperSum += p.Upper
	}
	if upperSum < total {
		warnings = append(warnings, fmt.Sprintf(
			"upper bounds sum to %g, below the total %g; upper bounds are penalised instead of enforced",
			upperSum, total))
	}
	if lowerSum > total {
		warnings = append(warnings, fmt.Sprintf(
			"lower bounds sum to %g, above the total %g; lower bounds are penalised instead of enforced",
			lowerSum, total))
	}

	for _, p := range portions {
		if p.Target < p.Lower || p.Target > p.Upper {
			warnings = append(warnings, fmt.Sprintf("Requirement '%s' target %g lies outside its interval [%g, %g]",
				p.Name, p.Target, p.Lower, p.Upper))
		}
		if p.Lower <= 0 {
			warnings = append(warnings, fmt.Sprintf("Requirement '%s' has a non-positive lower bound; its weight is capped",
				p.Name))
		}
	}

	return warnings
}
