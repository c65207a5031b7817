// Package requirements defines the allocation problem instance and loads it
// from JSON or YAML documents.
package requirements

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iwvelando/woptim/pkg/mathutil"
	"gopkg.in/yaml.v3"
)

// ErrFormat marks every malformed or missing field in an input document.
var ErrFormat = errors.New("invalid input format")

// Interval is the closed range [Lower, Upper] of acceptable allocations.
type Interval struct {
	Lower float64
	Upper float64
}

// Contains reports whether x lies within the interval, allowing tol slack.
func (iv Interval) Contains(x, tol float64) bool {
	return x >= iv.Lower-tol && x <= iv.Upper+tol
}

// Center is the midpoint of the interval.
func (iv Interval) Center() float64 {
	return (iv.Lower + iv.Upper) / 2
}

func (iv Interval) validate() error {
	if !mathutil.IsFinite(iv.Lower) || !mathutil.IsFinite(iv.Upper) {
		return fmt.Errorf("%w: interval bounds must be finite, got [%g, %g]", ErrFormat, iv.Lower, iv.Upper)
	}
	if iv.Lower > iv.Upper {
		return fmt.Errorf("%w: interval lower bound %g exceeds upper bound %g", ErrFormat, iv.Lower, iv.Upper)
	}
	return nil
}

func intervalFromPair(values []float64) (Interval, error) {
	if len(values) != 2 {
		return Interval{}, fmt.Errorf("%w: interval must have exactly 2 elements, got %d", ErrFormat, len(values))
	}
	return Interval{Lower: values[0], Upper: values[1]}, nil
}

// UnmarshalJSON decodes a two-element array [lower, upper].
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("%w: interval must be an array of 2 numbers: %v", ErrFormat, err)
	}
	parsed, err := intervalFromPair(values)
	if err != nil {
		return err
	}
	*iv = parsed
	return nil
}

// UnmarshalYAML decodes a two-element sequence [lower, upper].
func (iv *Interval) UnmarshalYAML(node *yaml.Node) error {
	var values []float64
	if err := node.Decode(&values); err != nil {
		return fmt.Errorf("%w: interval at line %d must be a sequence of 2 numbers: %v", ErrFormat, node.Line, err)
	}
	parsed, err := intervalFromPair(values)
	if err != nil {
		return err
	}
	*iv = parsed
	return nil
}

// MarshalJSON writes the interval as [lower, upper].
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{iv.Lower, iv.Upper})
}

// Requirement is one named portion of the total.
type Requirement struct {
	Name     string   `json:"name"`
	Interval Interval `json:"interval"`
	Target   Target   `json:"target"`
}

// ResolvedTarget is the numeric target of the requirement.
func (r Requirement) ResolvedTarget() float64 {
	return r.Target.Resolve(r.Interval)
}

// Instance is a complete allocation problem.
type Instance struct {
	Total        float64       `json:"total"`
	Price        float64       `json:"price,omitempty"`
	Requirements []Requirement `json:"requirements"`
}

// UnitPrice is the price of one unit of the total, or zero without a price.
func (inst Instance) UnitPrice() float64 {
	return mathutil.Ratio(inst.Price, inst.Total)
}

// Names returns the requirement names in input order.
func (inst Instance) Names() []string {
	names := make([]string, len(inst.Requirements))
	for i, r := range inst.Requirements {
		names[i] = r.Name
	}
	return names
}

// Validate checks the semantic rules that decoding alone cannot enforce.
func (inst Instance) Validate() error {
	if !mathutil.IsFinite(inst.Total) || inst.Total <= 0 {
		return fmt.Errorf("%w: total must be a positive number, got %g", ErrFormat, inst.Total)
	}
	if !mathutil.IsFinite(inst.Price) || inst.Price < 0 {
		return fmt.Errorf("%w: price must not be negative, got %g", ErrFormat, inst.Price)
	}
	if len(inst.Requirements) == 0 {
		return fmt.Errorf("%w: at least one requirement is needed", ErrFormat)
	}
	seen := make(map[string]int, len(inst.Requirements))
	for i, r := range inst.Requirements {
		if r.Name == "" {
			return fmt.Errorf("%w: requirement %d has an empty name", ErrFormat, i)
		}
		if j, ok := seen[r.Name]; ok {
			return fmt.Errorf("%w: requirement name %q is used by entries %d and %d", ErrFormat, r.Name, j, i)
		}
		seen[r.Name] = i
		if err := r.Interval.validate(); err != nil {
			return fmt.Errorf("requirement %q: %w", r.Name, err)
		}
		if r.Target.Kind == TargetNumeric && !mathutil.IsFinite(r.Target.Value) {
			return fmt.Errorf("requirement %q: %w: target must be finite", r.Name, ErrFormat)
		}
	}
	return nil
}
