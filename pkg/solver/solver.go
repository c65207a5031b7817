// Package solver minimises separable convex piecewise-quadratic objectives
// subject to a sum constraint and elementwise bounds.
//
// The package is the only place that knows how a problem is solved. Callers
// describe the objective with Penalty terms and the feasible set with
// Constraint values, and read back a Result carrying a Status.
package solver

import (
	"fmt"
)

// Status is the final state reported by a Solver.
type Status int

const (
	// Optimal means a minimiser was found.
	Optimal Status = iota
	// Infeasible means no point satisfies every constraint.
	Infeasible
	// Unbounded means the objective has no finite minimiser on the feasible set.
	Unbounded
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result contains the final result of a solve.
type Result struct {
	Status     Status    // Final status.
	X          []float64 // Solution, nil unless Status is Optimal.
	Value      float64   // Objective value at X.
	Multiplier float64   // Lagrange multiplier of the sum constraint.
	Iterations int       // Number of iterations performed.
}

// Solver minimises an objective subject to constraints.
//
// An error is returned only for malformed problems (dimension mismatches,
// negative weights, unsupported constraint combinations). Infeasible and
// unbounded problems are reported through Result.Status.
type Solver interface {
	Solve(objective Objective, constraints []Constraint) (*Result, error)
}

// Termination specifies the stopping criteria of an iterative solver.
type Termination struct {
	// Relative accuracy of the multiplier and of the sum constraint.
	Accuracy float64
	// The iteration stops when the number of iterations exceeds the limit.
	MaxIterations int
}

// Validate checks the termination criteria.
func (t Termination) Validate() error {
	switch {
	case t.Accuracy <= 0:
		return fmt.Errorf("solution accuracy must be greater than 0, got %g", t.Accuracy)
	case t.MaxIterations <= 0:
		return fmt.Errorf("max iterations must be greater than 0, got %d", t.MaxIterations)
	}
	return nil
}
