package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/woptim/pkg/constants"
)

// Bisection solves separable problems by bisecting the multiplier λ of the
// sum constraint.
//
// For a fixed λ every variable independently minimises term(x) − λ·x over its
// bounds. Since each term derivative is continuous, nondecreasing and
// piecewise linear, that minimiser is found exactly by inverting the
// derivative and clipping it to the bounds. The sum of the minimisers is
// nondecreasing in λ, so λ is bisected until the sum reaches the total.
type Bisection struct {
	Stop Termination
}

var _ Solver = (*Bisection)(nil)

// DefaultTermination returns the stopping criteria used when none are given.
func DefaultTermination() Termination {
	return Termination{
		Accuracy:      constants.DefaultAccuracy,
		MaxIterations: constants.DefaultMaxIterations,
	}
}

// NewBisection creates a Bisection solver after validating stop.
func NewBisection(stop Termination) (*Bisection, error) {
	if err := stop.Validate(); err != nil {
		return nil, err
	}
	return &Bisection{Stop: stop}, nil
}

// Solve implements Solver. Exactly one SumEquals value (possibly repeated)
// is required; bound constraints may be given any number of times and are
// intersected.
func (b *Bisection) Solve(objective Objective, constraints []Constraint) (*Result, error) {
	if err := b.Stop.Validate(); err != nil {
		return nil, err
	}
	if err := objective.validate(); err != nil {
		return nil, err
	}

	n := len(objective)
	set := newFeasibleSet(n)
	for k, c := range constraints {
		if c == nil {
			return nil, fmt.Errorf("constraint %d is nil", k)
		}
		if err := c.apply(set); err != nil {
			return nil, err
		}
	}
	if !set.hasTotal {
		return nil, errors.New("a sum constraint is required")
	}

	tol := b.Stop.Accuracy * math.Max(1, math.Abs(set.total))
	if set.empty(tol) {
		return &Result{Status: Infeasible}, nil
	}

	derivs := make([]derivative, n)
	for i, t := range objective {
		derivs[i] = newDerivative(t)
	}

	lo, hi := make([]float64, n), make([]float64, n)
	sumAt := func(lambda float64, pick func(derivative, float64) float64, x []float64) float64 {
		s := 0.0
		for i, d := range derivs {
			x[i] = set.clip(i, pick(d, lambda))
			s += x[i]
		}
		return s
	}
	lowest, highest := derivative.lowest, derivative.highest

	iter := 0

	// Bracket λ so that the lowest minimisers at a stay at or below the total
	// and the highest minimisers at c reach it.
	a, c := -1.0, 1.0
	for sumAt(a, lowest, lo) > set.total {
		a *= 2
		iter++
		if math.IsInf(a, 0) {
			return &Result{Status: Unbounded, Iterations: iter}, nil
		}
	}
	for sumAt(c, highest, hi) < set.total {
		c *= 2
		iter++
		if math.IsInf(c, 0) {
			return &Result{Status: Unbounded, Iterations: iter}, nil
		}
	}

	for k := 0; k < b.Stop.MaxIterations; k++ {
		if c-a <= b.Stop.Accuracy*math.Max(1, math.Max(math.Abs(a), math.Abs(c))) {
			break
		}
		mid := a + (c-a)/2
		if mid <= a || mid >= c {
			break
		}
		iter++
		if sumAt(mid, lowest, lo) > set.total {
			c = mid
			continue
		}
		if sumAt(mid, highest, hi) < set.total {
			a = mid
			continue
		}
		a, c = mid, mid
	}

	lambda := a + (c-a)/2
	sLo := sumAt(lambda, lowest, lo)
	sHi := sumAt(lambda, highest, hi)

	theta := 0.0
	if sHi > sLo && !math.IsInf(sHi-sLo, 0) {
		theta = math.Min(math.Max((set.total-sLo)/(sHi-sLo), 0), 1)
	}

	// Flat terms without bounds leave an unbounded interval of minimisers;
	// pick its finite end, and let polish close the gap to the total.
	x := make([]float64, n)
	for i := range x {
		switch {
		case lo[i] == hi[i]:
			x[i] = lo[i]
		case math.IsInf(lo[i], -1) && math.IsInf(hi[i], 1):
			x[i] = set.clip(i, 0)
		case math.IsInf(lo[i], -1):
			x[i] = hi[i]
		case math.IsInf(hi[i], 1):
			x[i] = lo[i]
		default:
			x[i] = lo[i] + theta*(hi[i]-lo[i])
		}
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &Result{Status: Unbounded, Multiplier: lambda, Iterations: iter}, nil
		}
	}

	if residual := set.polish(x); math.Abs(residual) > tol {
		return &Result{Status: Infeasible, Multiplier: lambda, Iterations: iter}, nil
	}

	return &Result{
		Status:     Optimal,
		X:          x,
		Value:      objective.Value(x),
		Multiplier: lambda,
		Iterations: iter,
	}, nil
}

// polish spreads the remaining gap between sum(x) and the total over the
// variables that can still move towards it, and returns what is left.
func (set *feasibleSet) polish(x []float64) float64 {
	residual := set.total
	for _, v := range x {
		residual -= v
	}
	for pass := 0; pass <= len(x) && residual != 0; pass++ {
		var free []int
		for i, v := range x {
			if (residual > 0 && v < set.upper[i]) || (residual < 0 && v > set.lower[i]) {
				free = append(free, i)
			}
		}
		if len(free) == 0 {
			break
		}
		share := residual / float64(len(free))
		moved := 0.0
		for _, i := range free {
			next := set.clip(i, x[i]+share)
			moved += next - x[i]
			x[i] = next
		}
		if moved == 0 {
			break
		}
		residual -= moved
	}
	return residual
}
