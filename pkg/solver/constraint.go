package solver

import (
	"fmt"
	"math"
)

// Constraint restricts the feasible set. The supported constraints are
// SumEquals, AtMost and AtLeast.
type Constraint interface {
	apply(set *feasibleSet) error
	fmt.Stringer
}

// SumEquals requires the variables to add up to Total.
type SumEquals struct {
	Total float64
}

// AtMost requires x[i] ≤ Bounds[i] for every variable.
type AtMost struct {
	Bounds []float64
}

// AtLeast requires x[i] ≥ Bounds[i] for every variable.
type AtLeast struct {
	Bounds []float64
}

func (c SumEquals) String() string { return fmt.Sprintf("sum(x) == %g", c.Total) }
func (c AtMost) String() string    { return fmt.Sprintf("x <= %v", c.Bounds) }
func (c AtLeast) String() string   { return fmt.Sprintf("x >= %v", c.Bounds) }

// feasibleSet is {x : sum(x) == total, lower ≤ x ≤ upper}.
type feasibleSet struct {
	total    float64
	hasTotal bool
	lower    []float64
	upper    []float64
}

func newFeasibleSet(n int) *feasibleSet {
	set := &feasibleSet{
		lower: make([]float64, n),
		upper: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		set.lower[i] = math.Inf(-1)
		set.upper[i] = math.Inf(1)
	}
	return set
}

func (c SumEquals) apply(set *feasibleSet) error {
	if math.IsNaN(c.Total) || math.IsInf(c.Total, 0) {
		return fmt.Errorf("sum constraint total must be finite, got %g", c.Total)
	}
	if set.hasTotal && set.total != c.Total {
		return fmt.Errorf("conflicting sum constraints: %g and %g", set.total, c.Total)
	}
	set.total, set.hasTotal = c.Total, true
	return nil
}

func (c AtMost) apply(set *feasibleSet) error {
	if len(c.Bounds) != len(set.upper) {
		return fmt.Errorf("upper bound size %d must equal %d", len(c.Bounds), len(set.upper))
	}
	for i, b := range c.Bounds {
		if math.IsNaN(b) {
			return fmt.Errorf("upper bound %d is NaN", i)
		}
		set.upper[i] = math.Min(set.upper[i], b)
	}
	return nil
}

func (c AtLeast) apply(set *feasibleSet) error {
	if len(c.Bounds) != len(set.lower) {
		return fmt.Errorf("lower bound size %d must equal %d", len(c.Bounds), len(set.lower))
	}
	for i, b := range c.Bounds {
		if math.IsNaN(b) {
			return fmt.Errorf("lower bound %d is NaN", i)
		}
		set.lower[i] = math.Max(set.lower[i], b)
	}
	return nil
}

func (set *feasibleSet) clip(i int, x float64) float64 {
	return math.Min(math.Max(x, set.lower[i]), set.upper[i])
}

// empty reports whether the bounds alone, or the bounds together with the
// sum constraint, exclude every point.
func (set *feasibleSet) empty(tol float64) bool {
	low, high := 0.0, 0.0
	for i := range set.lower {
		if set.lower[i] > set.upper[i] {
			return true
		}
		low += set.lower[i]
		high += set.upper[i]
	}
	return low > set.total+tol || high < set.total-tol
}
