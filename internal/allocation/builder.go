package allocation

import (
	"fmt"

	"github.com/iwvelando/woptim/internal/requirements"
	"github.com/iwvelando/woptim/pkg/mathutil"
	"github.com/iwvelando/woptim/pkg/solver"
)

// Vectors are the per-requirement arrays the objective is built from, in
// input order.
type Vectors struct {
	Lower        []float64
	Upper        []float64
	Target       []float64
	LowerWeight  []float64
	UpperWeight  []float64
	TargetWeight []float64
}

// Derive resolves targets and computes weights for reqs.
func Derive(reqs []requirements.Requirement, opts Options) Vectors {
	n := len(reqs)
	v := Vectors{
		Lower:  make([]float64, n),
		Upper:  make([]float64, n),
		Target: make([]float64, n),
	}
	for i, r := range reqs {
		v.Lower[i] = r.Interval.Lower
		v.Upper[i] = r.Interval.Upper
		v.Target[i] = r.ResolvedTarget()
	}
	v.LowerWeight = Weights(v.Lower, opts)
	v.UpperWeight = Weights(v.Upper, opts)
	v.TargetWeight = Weights(v.Target, opts)
	return v
}

// Plan is a fully specified optimisation problem for one instance.
type Plan struct {
	Names   []string
	Total   float64
	Options Options
	Vectors

	// UpperBounded is set when sum(upper) ≥ total and x ≤ upper is imposed.
	UpperBounded bool
	// LowerBounded is set when sum(lower) ≤ total and x ≥ lower is imposed.
	LowerBounded bool

	Objective   solver.Objective
	Constraints []solver.Constraint
}

// Build constructs the objective and constraints for inst.
//
// The sum constraint is always imposed. Each bound constraint is imposed
// only if, on its own, it still lets the total be reached; otherwise that
// bound is enforced by its penalty alone. The two checks are independent.
func Build(inst *requirements.Instance, opts Options) (*Plan, error) {
	if inst == nil {
		return nil, fmt.Errorf("instance cannot be nil")
	}
	if len(inst.Requirements) == 0 {
		return nil, fmt.Errorf("instance has no requirements")
	}

	v := Derive(inst.Requirements, opts)
	plan := &Plan{
		Names:       inst.Names(),
		Total:       inst.Total,
		Options:     opts,
		Vectors:     v,
		Constraints: []solver.Constraint{solver.SumEquals{Total: inst.Total}},
	}

	if mathutil.Sum(v.Upper) >= inst.Total {
		plan.UpperBounded = true
		plan.Constraints = append(plan.Constraints, solver.AtMost{Bounds: v.Upper})
	}
	if mathutil.Sum(v.Lower) <= inst.Total {
		plan.LowerBounded = true
		plan.Constraints = append(plan.Constraints, solver.AtLeast{Bounds: v.Lower})
	}

	plan.Objective = make(solver.Objective, len(v.Lower))
	for i := range plan.Objective {
		plan.Objective[i] = solver.Term{
			{Side: solver.Below, Anchor: v.Lower[i], Weight: v.LowerWeight[i]},
			{Side: solver.Above, Anchor: v.Upper[i], Weight: v.UpperWeight[i]},
			{Side: solver.Both, Anchor: v.Target[i], Weight: opts.Gamma * v.TargetWeight[i]},
		}
	}
	return plan, nil
}

// Penalties splits the objective value at x into its lower-violation,
// upper-violation and target-deviation parts.
func (p *Plan) Penalties(x []float64) (lower, upper, target float64) {
	for i, term := range p.Objective {
		lower += term[0].Value(x[i])
		upper += term[1].Value(x[i])
		target += term[2].Value(x[i])
	}
	return lower, upper, target
}
