package allocation

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/iwvelando/woptim/internal/requirements"
	"github.com/iwvelando/woptim/pkg/solver"
	"go.uber.org/zap"
)

const tolerance = 1e-6

var approx = cmpopts.EquateApprox(0, tolerance)

func newTestAllocator(t *testing.T, opts Options) *Allocator {
	t.Helper()
	s, err := solver.NewBisection(solver.DefaultTermination())
	if err != nil {
		t.Fatalf("failed to create solver: %v", err)
	}
	a, err := NewAllocator(zap.NewNop(), s, opts)
	if err != nil {
		t.Fatalf("failed to create allocator: %v", err)
	}
	return a
}

func req(name string, lower, upper float64, target requirements.Target) requirements.Requirement {
	return requirements.Requirement{
		Name:     name,
		Interval: requirements.Interval{Lower: lower, Upper: upper},
		Target:   target,
	}
}

var center = requirements.Target{Kind: requirements.TargetCenter}

func TestWeight(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		absolute bool
		expected float64
	}{
		{"large value", 10, false, 0.1},
		{"unit value", 1, false, 1},
		{"at cap", 0.2, false, 5},
		{"below cap", 0.1, false, 5},
		{"zero", 0, false, 5},
		{"negative", -3, false, 5},
		{"absolute", 10, true, 1},
		{"absolute zero", 0, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Weight(tt.value, 5, tt.absolute); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Weight(%v) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestWeightIsMonotonic(t *testing.T) {
	values := []float64{0.01, 0.1, 0.2, 0.25, 0.5, 1, 2, 5, 10, 100}
	prev := math.Inf(1)
	for _, v := range values {
		w := Weight(v, 5, false)
		if w > prev {
			t.Errorf("weight %v at %v exceeds weight %v of a smaller value", w, v, prev)
		}
		if w > 5 {
			t.Errorf("weight %v at %v exceeds the cap", w, v)
		}
		if again := Weight(v, 5, false); again != w {
			t.Errorf("Weight(%v) is not deterministic: %v then %v", v, w, again)
		}
		prev = w
	}
}

func TestAbsoluteWeightsAreUniform(t *testing.T) {
	opts := DefaultOptions()
	opts.Absolute = true
	v := Derive([]requirements.Requirement{
		req("a", 0.01, 100, center),
		req("b", -5, 0, requirements.Numeric(3)),
	}, opts)
	for _, weights := range [][]float64{v.LowerWeight, v.UpperWeight, v.TargetWeight} {
		if diff := cmp.Diff([]float64{1, 1}, weights); diff != "" {
			t.Errorf("expected uniform weights (-want +got):\n%s", diff)
		}
	}
}

func TestTargetResolution(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   float64
	}{
		{"center", "center", 5},
		{"lower", "lower", 2},
		{"upper", "upper", 8},
		{"numeric", "3.5", 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := requirements.ParseTarget(tt.target)
			if err != nil {
				t.Fatalf("ParseTarget(%q) failed: %v", tt.target, err)
			}
			v := Derive([]requirements.Requirement{req("a", 2, 8, target)}, DefaultOptions())
			if v.Target[0] != tt.want {
				t.Errorf("resolved target = %v, expected %v", v.Target[0], tt.want)
			}
		})
	}
}

func TestNewOptions(t *testing.T) {
	opts, err := NewOptions(0.2, 0.2, false)
	if err != nil {
		t.Fatalf("NewOptions failed: %v", err)
	}
	if opts.MaxWeight != 5 {
		t.Errorf("expected max weight 5, got %v", opts.MaxWeight)
	}
	if math.Abs(opts.TMin()-0.2) > 1e-12 {
		t.Errorf("expected t-min 0.2, got %v", opts.TMin())
	}
	if _, err := NewOptions(-1, 0.2, false); err == nil {
		t.Errorf("expected error for negative gamma")
	}
	if _, err := NewOptions(0.2, 0, false); err == nil {
		t.Errorf("expected error for zero t-min")
	}
}

func TestBuildConstraints(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		wantUpper bool
		wantLower bool
	}{
		{"both bounds feasible", 10, true, true},
		{"total above upper sum", 20, false, true},
		{"total equals upper sum", 16, true, true},
		{"total below lower sum", 2, true, false},
		{"total equals lower sum", 4, true, true},
	}

	reqs := []requirements.Requirement{req("a", 1, 8, center), req("b", 3, 8, center)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Build(&requirements.Instance{Total: tt.total, Requirements: reqs}, DefaultOptions())
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if plan.UpperBounded != tt.wantUpper {
				t.Errorf("UpperBounded = %v, expected %v", plan.UpperBounded, tt.wantUpper)
			}
			if plan.LowerBounded != tt.wantLower {
				t.Errorf("LowerBounded = %v, expected %v", plan.LowerBounded, tt.wantLower)
			}
			want := 1
			if tt.wantUpper {
				want++
			}
			if tt.wantLower {
				want++
			}
			if len(plan.Constraints) != want {
				t.Errorf("expected %d constraints, got %d", want, len(plan.Constraints))
			}
			if _, ok := plan.Constraints[0].(solver.SumEquals); !ok {
				t.Errorf("first constraint should be the sum constraint, got %v", plan.Constraints[0])
			}
		})
	}
}

func TestBuildObjective(t *testing.T) {
	opts := Options{Gamma: 0.5, MaxWeight: 5}
	plan, err := Build(&requirements.Instance{
		Total:        4,
		Requirements: []requirements.Requirement{req("a", 1, 4, requirements.Numeric(2))},
	}, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := solver.Term{
		{Side: solver.Below, Anchor: 1, Weight: 1},
		{Side: solver.Above, Anchor: 4, Weight: 0.25},
		{Side: solver.Both, Anchor: 2, Weight: 0.25},
	}
	if diff := cmp.Diff(want, plan.Objective[0]); diff != "" {
		t.Errorf("unexpected objective term (-want +got):\n%s", diff)
	}

	// x = 0: lower violation 1·1², target deviation 0.5·0.5·2².
	lower, upper, target := plan.Penalties([]float64{0})
	if lower != 1 || upper != 0 || target != 1 {
		t.Errorf("Penalties(0) = %v, %v, %v; expected 1, 0, 1", lower, upper, target)
	}
}

func TestBuildRejectsEmptyInstance(t *testing.T) {
	if _, err := Build(nil, DefaultOptions()); err == nil {
		t.Errorf("expected error for nil instance")
	}
	if _, err := Build(&requirements.Instance{Total: 1}, DefaultOptions()); err == nil {
		t.Errorf("expected error for instance without requirements")
	}
}

func TestAllocateSymmetric(t *testing.T) {
	inst := &requirements.Instance{
		Total:        10,
		Requirements: []requirements.Requirement{req("A", 0, 10, center), req("B", 0, 10, center)},
	}
	_, alloc, err := newTestAllocator(t, DefaultOptions()).Allocate(inst)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if diff := cmp.Diff([]float64{5, 5}, alloc.Quantities(), approx); diff != "" {
		t.Errorf("unexpected allocation (-want +got):\n%s", diff)
	}
	if alloc.Priced {
		t.Errorf("allocation without price should not be priced")
	}
}

func TestAllocatePrices(t *testing.T) {
	inst := &requirements.Instance{
		Total:        10,
		Price:        100,
		Requirements: []requirements.Requirement{req("A", 0, 10, center), req("B", 0, 10, center)},
	}
	_, alloc, err := newTestAllocator(t, DefaultOptions()).Allocate(inst)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if !alloc.Priced {
		t.Fatalf("allocation with price should be priced")
	}
	for _, p := range alloc.Portions {
		if p.Price != 50 {
			t.Errorf("%s: expected price 50, got %v", p.Name, p.Price)
		}
	}
}

func TestPortionPrice(t *testing.T) {
	inst := requirements.Instance{Total: 10, Price: 100}
	if got := PortionPrice(inst.UnitPrice(), 5); got != 50 {
		t.Errorf("PortionPrice = %v, expected 50", got)
	}
	if got := PortionPrice(1.0/3, 1); got != 0.33 {
		t.Errorf("PortionPrice = %v, expected 0.33", got)
	}
	if got := PortionPrice(2.0/3, 1); got != 0.67 {
		t.Errorf("PortionPrice = %v, expected 0.67", got)
	}
}

func TestAllocateTotalAboveUpperSum(t *testing.T) {
	inst := &requirements.Instance{
		Total: 10,
		Requirements: []requirements.Requirement{
			req("A", 1, 2, center),
			req("B", 0.5, 3, requirements.Target{Kind: requirements.TargetUpper}),
		},
	}
	plan, alloc, err := newTestAllocator(t, DefaultOptions()).Allocate(inst)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if plan.UpperBounded {
		t.Errorf("upper bound constraint should be omitted")
	}
	if !plan.LowerBounded {
		t.Errorf("lower bound constraint should be imposed")
	}
	if math.Abs(alloc.Total()-10) > tolerance {
		t.Errorf("allocation sums to %v, expected 10", alloc.Total())
	}
	exceeded := false
	for _, p := range alloc.Portions {
		if p.Quantity < p.Interval.Lower-tolerance {
			t.Errorf("%s: %v is below its lower bound %v", p.Name, p.Quantity, p.Interval.Lower)
		}
		if p.Quantity > p.Interval.Upper {
			exceeded = true
		}
	}
	if !exceeded {
		t.Errorf("expected some portion above its upper bound, got %v", alloc.Quantities())
	}
}

func TestAllocateProperties(t *testing.T) {
	reqs := []requirements.Requirement{
		req("rent", 2, 8, center),
		req("food", 1, 3, requirements.Target{Kind: requirements.TargetLower}),
		req("savings", 0.5, 4, requirements.Numeric(3.5)),
		req("fun", 0, 1, requirements.Target{Kind: requirements.TargetUpper}),
		req("travel", 0.1, 6, requirements.Numeric(0.05)),
	}
	optionSets := map[string]Options{
		"default":  DefaultOptions(),
		"absolute": {Gamma: 0.2, MaxWeight: 5, Absolute: true},
		"no gamma": {Gamma: 0, MaxWeight: 5},
		"gamma 2":  {Gamma: 2, MaxWeight: 10},
	}

	for name, opts := range optionSets {
		for _, total := range []float64{1, 3.6, 10, 15, 22, 40} {
			inst := &requirements.Instance{Total: total, Requirements: reqs}
			plan, alloc, err := newTestAllocator(t, opts).Allocate(inst)
			if err != nil {
				t.Fatalf("%s total %v: Allocate failed: %v", name, total, err)
			}
			if math.Abs(alloc.Total()-total) > tolerance {
				t.Errorf("%s total %v: allocation sums to %v", name, total, alloc.Total())
			}
			for _, p := range alloc.Portions {
				if plan.UpperBounded && p.Quantity > p.Interval.Upper+tolerance {
					t.Errorf("%s total %v: %s = %v exceeds upper bound %v", name, total, p.Name, p.Quantity, p.Interval.Upper)
				}
				if plan.LowerBounded && p.Quantity < p.Interval.Lower-tolerance {
					t.Errorf("%s total %v: %s = %v is below lower bound %v", name, total, p.Name, p.Quantity, p.Interval.Lower)
				}
			}
		}
	}
}

type stubSolver struct {
	result *solver.Result
	err    error
}

func (s stubSolver) Solve(solver.Objective, []solver.Constraint) (*solver.Result, error) {
	return s.result, s.err
}

func TestAllocateReportsSolverFailures(t *testing.T) {
	inst := &requirements.Instance{
		Total:        1,
		Requirements: []requirements.Requirement{req("A", 0, 1, center)},
	}

	for _, status := range []solver.Status{solver.Infeasible, solver.Unbounded} {
		a, err := NewAllocator(nil, stubSolver{result: &solver.Result{Status: status}}, DefaultOptions())
		if err != nil {
			t.Fatalf("NewAllocator failed: %v", err)
		}
		plan, alloc, err := a.Allocate(inst)
		if !errors.Is(err, ErrNotOptimal) {
			t.Fatalf("expected ErrNotOptimal, got %v", err)
		}
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.Status != status {
			t.Errorf("expected StatusError with %s, got %v", status, err)
		}
		if plan == nil || alloc != nil {
			t.Errorf("expected plan without allocation on %s", status)
		}
	}

	boom := errors.New("boom")
	a, err := NewAllocator(nil, stubSolver{err: boom}, DefaultOptions())
	if err != nil {
		t.Fatalf("NewAllocator failed: %v", err)
	}
	if _, _, err := a.Allocate(inst); !errors.Is(err, boom) {
		t.Errorf("expected wrapped solver error, got %v", err)
	}
}

func TestNewAllocatorValidates(t *testing.T) {
	if _, err := NewAllocator(nil, nil, DefaultOptions()); err == nil {
		t.Errorf("expected error for nil solver")
	}
	if _, err := NewAllocator(nil, stubSolver{}, Options{}); err == nil {
		t.Errorf("expected error for zero max weight")
	}

	opts, err := NewOptions(0.5, 0.25, true)
	if err != nil {
		t.Fatalf("NewOptions() error = %v", err)
	}
	allocator, err := NewAllocator(nil, stubSolver{}, opts)
	if err != nil {
		t.Fatalf("NewAllocator() error = %v", err)
	}
	if diff := cmp.Diff(opts, allocator.Options()); diff != "" {
		t.Errorf("Options() mismatch (-want +got):\n%s", diff)
	}
}
