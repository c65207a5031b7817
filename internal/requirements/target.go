package requirements

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/woptim/pkg/mathutil"
	"gopkg.in/yaml.v3"
)

// TargetKind tags the variant held by a Target.
type TargetKind int

const (
	// TargetNumeric is an explicit value.
	TargetNumeric TargetKind = iota
	// TargetLower resolves to the interval's lower bound.
	TargetLower
	// TargetUpper resolves to the interval's upper bound.
	TargetUpper
	// TargetCenter resolves to the interval's midpoint.
	TargetCenter
)

// Tokens accepted in place of a numeric target.
const (
	TokenLower  = "lower"
	TokenUpper  = "upper"
	TokenCenter = "center"
)

// Target is either one of the interval tokens or a numeric literal.
type Target struct {
	Kind  TargetKind
	Value float64 // only meaningful for TargetNumeric
}

// Numeric returns a numeric target.
func Numeric(v float64) Target {
	return Target{Kind: TargetNumeric, Value: v}
}

// ParseTarget parses a token or a floating-point literal.
func ParseTarget(s string) (Target, error) {
	switch strings.TrimSpace(s) {
	case TokenLower:
		return Target{Kind: TargetLower}, nil
	case TokenUpper:
		return Target{Kind: TargetUpper}, nil
	case TokenCenter:
		return Target{Kind: TargetCenter}, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Target{}, fmt.Errorf("%w: target %q is neither %s, %s, %s nor a number",
			ErrFormat, s, TokenLower, TokenUpper, TokenCenter)
	}
	if !mathutil.IsFinite(v) {
		return Target{}, fmt.Errorf("%w: target %q must be finite", ErrFormat, s)
	}
	return Numeric(v), nil
}

// Resolve returns the numeric target for the given interval.
func (t Target) Resolve(iv Interval) float64 {
	switch t.Kind {
	case TargetLower:
		return iv.Lower
	case TargetUpper:
		return iv.Upper
	case TargetCenter:
		return iv.Center()
	}
	return t.Value
}

func (t Target) String() string {
	switch t.Kind {
	case TargetLower:
		return TokenLower
	case TargetUpper:
		return TokenUpper
	case TargetCenter:
		return TokenCenter
	}
	return strconv.FormatFloat(t.Value, 'g', -1, 64)
}

// UnmarshalJSON accepts a JSON number or a string holding a token or number.
func (t *Target) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: target: %v", ErrFormat, err)
		}
		parsed, err := ParseTarget(s)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: target %s is neither a string nor a number", ErrFormat, data)
	}
	*t = Numeric(v)
	return nil
}

// UnmarshalYAML accepts a scalar holding a token or number.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: target at line %d must be a scalar", ErrFormat, node.Line)
	}
	parsed, err := ParseTarget(node.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON writes tokens as strings and numeric targets as numbers.
func (t Target) MarshalJSON() ([]byte, error) {
	if t.Kind == TargetNumeric {
		return json.Marshal(t.Value)
	}
	return json.Marshal(t.String())
}
