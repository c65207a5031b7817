package requirements

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a supported input document encoding.
type Format string

const (
	// FormatJSON is the default input encoding.
	FormatJSON Format = "json"
	// FormatYAML is selected by a .yaml or .yml extension.
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document format from the file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// document mirrors the input file with pointers so that absent required
// fields can be told apart from zero values.
type document struct {
	Total        *float64         `json:"total" yaml:"total"`
	Price        *float64         `json:"price" yaml:"price"`
	Requirements []rawRequirement `json:"requirements" yaml:"requirements"`
}

type rawRequirement struct {
	Name     *string   `json:"name" yaml:"name"`
	Interval *Interval `json:"interval" yaml:"interval"`
	Target   *Target   `json:"target" yaml:"target"`
}

// Load reads and validates the problem instance stored at path.
func Load(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	inst, err := Decode(bytes.NewReader(data), FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("input file %s: %w", path, err)
	}
	return inst, nil
}

// Decode parses and validates a problem instance. A missing price defaults
// to zero; every other field is required.
func Decode(r io.Reader, format Format) (*Instance, error) {
	var doc document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		if err = dec.Decode(&doc); err == nil {
			if _, next := dec.Token(); next != io.EOF {
				err = fmt.Errorf("%w: unexpected data after the document", ErrFormat)
			}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		if err = dec.Decode(&doc); err == nil {
			var extra yaml.Node
			if next := dec.Decode(&extra); next != io.EOF {
				err = fmt.Errorf("%w: unexpected data after the document", ErrFormat)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
	if err != nil {
		if errors.Is(err, ErrFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	inst, err := doc.instance()
	if err != nil {
		return nil, err
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (doc document) instance() (*Instance, error) {
	if doc.Total == nil {
		return nil, fmt.Errorf("%w: missing required field %q", ErrFormat, "total")
	}
	if doc.Requirements == nil {
		return nil, fmt.Errorf("%w: missing required field %q", ErrFormat, "requirements")
	}

	inst := &Instance{
		Total:        *doc.Total,
		Requirements: make([]Requirement, 0, len(doc.Requirements)),
	}
	if doc.Price != nil {
		inst.Price = *doc.Price
	}

	for i, raw := range doc.Requirements {
		var missing []string
		if raw.Name == nil {
			missing = append(missing, "name")
		}
		if raw.Interval == nil {
			missing = append(missing, "interval")
		}
		if raw.Target == nil {
			missing = append(missing, "target")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: requirement %d is missing %s", ErrFormat, i, strings.Join(missing, ", "))
		}
		inst.Requirements = append(inst.Requirements, Requirement{
			Name:     *raw.Name,
			Interval: *raw.Interval,
			Target:   *raw.Target,
		})
	}
	return inst, nil
}
