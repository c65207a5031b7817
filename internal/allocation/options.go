// Package allocation turns a requirements instance into a weighted
// least-squares problem, solves it, and reports the allocated portions.
package allocation

import (
	"fmt"

	"github.com/iwvelando/woptim/pkg/constants"
	"github.com/iwvelando/woptim/pkg/mathutil"
)

// Options parameterise the objective. They are fixed for one allocation.
type Options struct {
	// Gamma scales the two-sided target penalty.
	Gamma float64
	// MaxWeight caps relative weights; it is 1/tMin.
	MaxWeight float64
	// Absolute switches every weight to 1.
	Absolute bool
}

// DefaultOptions returns gamma 0.2 and tMin 0.2 with relative weights.
func DefaultOptions() Options {
	return Options{
		Gamma:     constants.DefaultGamma,
		MaxWeight: 1 / constants.DefaultTMin,
	}
}

// NewOptions derives Options from the command line parameters.
func NewOptions(gamma, tMin float64, absolute bool) (Options, error) {
	if !mathutil.IsFinite(gamma) || gamma < 0 {
		return Options{}, fmt.Errorf("gamma must be a non-negative number, got %g", gamma)
	}
	if !mathutil.IsFinite(tMin) || tMin <= 0 {
		return Options{}, fmt.Errorf("t-min must be a positive number, got %g", tMin)
	}
	return Options{Gamma: gamma, MaxWeight: 1 / tMin, Absolute: absolute}, nil
}

// TMin is the floor target size the weight cap was derived from.
func (o Options) TMin() float64 {
	return 1 / o.MaxWeight
}
