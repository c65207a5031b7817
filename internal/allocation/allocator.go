package allocation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/woptim/internal/requirements"
	"github.com/iwvelando/woptim/pkg/constants"
	"github.com/iwvelando/woptim/pkg/mathutil"
	"github.com/iwvelando/woptim/pkg/solver"
	"go.uber.org/zap"
)

// ErrNotOptimal is wrapped by every StatusError.
var ErrNotOptimal = errors.New("no optimal allocation")

// StatusError reports a solver status other than Optimal.
type StatusError struct {
	Status solver.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: solver reported %s problem", ErrNotOptimal, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrNotOptimal
}

// Portion is the solved share of one requirement.
type Portion struct {
	Name     string
	Interval requirements.Interval
	Target   float64
	Quantity float64
	// Price is the rounded monetary value of Quantity; zero when the
	// instance has no price.
	Price float64
}

// Allocation is the outcome of a successful solve.
type Allocation struct {
	Status     solver.Status
	Value      float64
	Iterations int
	Priced     bool
	Portions   []Portion
}

// Quantities returns the solved values in input order.
func (a *Allocation) Quantities() []float64 {
	q := make([]float64, len(a.Portions))
	for i, p := range a.Portions {
		q[i] = p.Quantity
	}
	return q
}

// Total is the sum of all allocated quantities.
func (a *Allocation) Total() float64 {
	return mathutil.Sum(a.Quantities())
}

// PortionPrice is the price of quantity at the given unit price, rounded to
// cents.
func PortionPrice(unitPrice, quantity float64) float64 {
	return mathutil.Round(unitPrice * quantity)
}

// Allocator builds and solves allocation problems.
type Allocator struct {
	logger *zap.Logger
	solver solver.Solver
	opts   Options
}

// NewAllocator constructs an Allocator. A nil logger disables logging.
func NewAllocator(logger *zap.Logger, s solver.Solver, opts Options) (*Allocator, error) {
	if s == nil {
		return nil, fmt.Errorf("solver cannot be nil")
	}
	if opts.MaxWeight <= 0 || opts.Gamma < 0 {
		return nil, fmt.Errorf("invalid options: gamma %g, max weight %g", opts.Gamma, opts.MaxWeight)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{logger: logger, solver: s, opts: opts}, nil
}

// Options returns the options the allocator was created with.
func (a *Allocator) Options() Options {
	return a.opts
}

// Allocate builds the problem for inst and solves it. The plan is returned
// even when solving fails so that callers can report what was attempted.
func (a *Allocator) Allocate(inst *requirements.Instance) (*Plan, *Allocation, error) {
	plan, err := Build(inst, a.opts)
	if err != nil {
		return nil, nil, err
	}

	a.logger.Debug("built allocation problem",
		zap.String("op", "allocation.Allocate"),
		zap.Int("portions", len(plan.Names)),
		zap.Float64("total", plan.Total),
		zap.Bool("upperBounded", plan.UpperBounded),
		zap.Bool("lowerBounded", plan.LowerBounded),
		zap.Float64("gamma", a.opts.Gamma),
		zap.Float64("maxWeight", a.opts.MaxWeight),
		zap.Bool("absolute", a.opts.Absolute),
	)

	res, err := a.solver.Solve(plan.Objective, plan.Constraints)
	if err != nil {
		return plan, nil, fmt.Errorf("failed to solve allocation problem: %w", err)
	}
	if res.Status != solver.Optimal {
		a.logger.Warn("solver did not reach an optimal allocation",
			zap.String("op", "allocation.Allocate"),
			zap.Stringer("status", res.Status),
			zap.Int("iterations", res.Iterations),
		)
		return plan, nil, &StatusError{Status: res.Status}
	}

	alloc := &Allocation{
		Status:     res.Status,
		Value:      res.Value,
		Iterations: res.Iterations,
		Priced:     inst.Price > 0,
		Portions:   make([]Portion, len(plan.Names)),
	}
	unitPrice := inst.UnitPrice()
	for i, name := range plan.Names {
		p := Portion{
			Name:     name,
			Interval: inst.Requirements[i].Interval,
			Target:   plan.Target[i],
			Quantity: res.X[i],
		}
		if alloc.Priced {
			p.Price = PortionPrice(unitPrice, p.Quantity)
		}
		alloc.Portions[i] = p
	}

	if alloc.Priced {
		priced := 0.0
		for _, p := range alloc.Portions {
			priced += p.Price
		}
		if drift := priced - inst.Price; !mathutil.IsZero(drift) {
			a.logger.Debug("rounded portion prices do not add up to the price",
				zap.String("op", "allocation.Allocate"),
				zap.Float64("priced", priced),
				zap.Float64("price", inst.Price),
				zap.Float64("drift", drift),
			)
		}
	}

	if total := alloc.Total(); !mathutil.WithinTolerance(total, plan.Total, constants.SumTolerance*max(1, plan.Total)) {
		a.logger.Warn("allocation does not reach the requested total",
			zap.String("op", "allocation.Allocate"),
			zap.Float64("allocated", total),
			zap.Float64("total", plan.Total),
		)
	}

	lower, upper, target := plan.Penalties(res.X)
	a.logger.Info("allocation solved",
		zap.String("op", "allocation.Allocate"),
		zap.Stringer("status", res.Status),
		zap.Float64("value", res.Value),
		zap.Float64("lowerPenalty", lower),
		zap.Float64("upperPenalty", upper),
		zap.Float64("targetPenalty", target),
		zap.Float64("multiplier", res.Multiplier),
		zap.Int("iterations", res.Iterations),
	)

	return plan, alloc, nil
}
