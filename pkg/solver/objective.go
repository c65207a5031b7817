package solver

import (
	"fmt"
	"math"
	"sort"
)

// Side selects which deviations from an anchor a Penalty charges for.
type Side int

const (
	// Below charges w·max(0, anchor−x)².
	Below Side = iota
	// Above charges w·max(0, x−anchor)².
	Above
	// Both charges w·(x−anchor)².
	Both
)

func (s Side) String() string {
	switch s {
	case Below:
		return "below"
	case Above:
		return "above"
	case Both:
		return "both"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Penalty is a weighted squared deviation of one variable from an anchor.
type Penalty struct {
	Side   Side
	Anchor float64
	Weight float64
}

// excess returns the signed deviation that is squared by the penalty.
func (p Penalty) excess(x float64) float64 {
	d := x - p.Anchor
	switch p.Side {
	case Below:
		return math.Min(d, 0)
	case Above:
		return math.Max(d, 0)
	}
	return d
}

// Value evaluates the penalty at x.
func (p Penalty) Value(x float64) float64 {
	e := p.excess(x)
	return p.Weight * e * e
}

// Slope is the derivative of the penalty at x.
func (p Penalty) Slope(x float64) float64 {
	return 2 * p.Weight * p.excess(x)
}

// Term is the sum of penalties charged to one variable.
type Term []Penalty

// Value evaluates the term at x.
func (t Term) Value(x float64) float64 {
	v := 0.0
	for _, p := range t {
		v += p.Value(x)
	}
	return v
}

// Slope is the derivative of the term at x. It is continuous and
// nondecreasing in x.
func (t Term) Slope(x float64) float64 {
	s := 0.0
	for _, p := range t {
		s += p.Slope(x)
	}
	return s
}

// Objective is a separable sum with one Term per variable.
type Objective []Term

// Value evaluates the objective at x.
func (o Objective) Value(x []float64) float64 {
	v := 0.0
	for i, t := range o {
		v += t.Value(x[i])
	}
	return v
}

func (o Objective) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("objective has no variables")
	}
	for i, t := range o {
		for _, p := range t {
			if math.IsNaN(p.Weight) || p.Weight < 0 || math.IsInf(p.Weight, 0) {
				return fmt.Errorf("variable %d: penalty weight must be finite and non-negative, got %g", i, p.Weight)
			}
			if math.IsNaN(p.Anchor) || math.IsInf(p.Anchor, 0) {
				return fmt.Errorf("variable %d: penalty anchor must be finite, got %g", i, p.Anchor)
			}
			if p.Side < Below || p.Side > Both {
				return fmt.Errorf("variable %d: unknown penalty side %d", i, int(p.Side))
			}
		}
	}
	return nil
}

// derivative is the piecewise-linear derivative of a Term, prepared for
// inversion. Knots are the anchors of one-sided penalties in ascending
// order; values holds the derivative at each knot.
type derivative struct {
	term   Term
	knots  []float64
	values []float64
	left   float64 // slope of the derivative left of the first knot
	right  float64 // slope of the derivative right of the last knot
}

func newDerivative(t Term) derivative {
	d := derivative{term: t}
	for _, p := range t {
		curvature := 2 * p.Weight
		switch p.Side {
		case Below:
			d.knots = append(d.knots, p.Anchor)
			d.left += curvature
		case Above:
			d.knots = append(d.knots, p.Anchor)
			d.right += curvature
		case Both:
			d.left += curvature
			d.right += curvature
		}
	}
	sort.Float64s(d.knots)
	d.values = make([]float64, len(d.knots))
	for i, k := range d.knots {
		d.values[i] = t.Slope(k)
	}
	return d
}

// lowest returns the smallest x with t′(x) ≥ lambda.
func (d derivative) lowest(lambda float64) float64 {
	if len(d.knots) == 0 {
		return d.solveFree(lambda, math.Inf(-1), math.Inf(1))
	}
	first := 0
	if lambda <= d.values[first] {
		if d.left > 0 {
			return d.knots[first] - (d.values[first]-lambda)/d.left
		}
		return math.Inf(-1)
	}
	for j := 1; j < len(d.knots); j++ {
		if lambda <= d.values[j] {
			return interpolate(d.knots[j-1], d.knots[j], d.values[j-1], d.values[j], lambda)
		}
	}
	last := len(d.knots) - 1
	if d.right > 0 {
		return d.knots[last] + (lambda-d.values[last])/d.right
	}
	return math.Inf(1)
}

// highest returns the largest x with t′(x) ≤ lambda.
func (d derivative) highest(lambda float64) float64 {
	if len(d.knots) == 0 {
		return d.solveFree(lambda, math.Inf(1), math.Inf(-1))
	}
	last := len(d.knots) - 1
	if lambda >= d.values[last] {
		if d.right > 0 {
			return d.knots[last] + (lambda-d.values[last])/d.right
		}
		return math.Inf(1)
	}
	for j := last - 1; j >= 0; j-- {
		if lambda >= d.values[j] {
			return interpolate(d.knots[j], d.knots[j+1], d.values[j], d.values[j+1], lambda)
		}
	}
	if d.left > 0 {
		return d.knots[0] - (d.values[0]-lambda)/d.left
	}
	return math.Inf(-1)
}

// solveFree handles terms without knots, whose derivative is affine. When the
// derivative is constant, reached is returned if lambda equals it (or lies on
// the satisfied side) and missed otherwise.
func (d derivative) solveFree(lambda, reached, missed float64) float64 {
	c := d.term.Slope(0)
	if d.left > 0 {
		return (lambda - c) / d.left
	}
	if (lambda <= c && math.IsInf(reached, -1)) || (lambda >= c && math.IsInf(reached, 1)) {
		return reached
	}
	return missed
}

// interpolate finds x in [x0, x1] where the linear segment through (x0, v0)
// and (x1, v1) equals lambda; v0 < v1 is required.
func interpolate(x0, x1, v0, v1, lambda float64) float64 {
	if v1 <= v0 {
		return x0
	}
	x := x0 + (lambda-v0)*(x1-x0)/(v1-v0)
	return math.Min(math.Max(x, x0), x1)
}
