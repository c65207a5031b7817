// Package output provides utilities for formatting and displaying allocation results.
package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/iwvelando/woptim/internal/allocation"
	"github.com/iwvelando/woptim/internal/requirements"
	"github.com/iwvelando/woptim/pkg/format"
)

// Report is everything a run produces. Allocation is nil when solving failed.
type Report struct {
	Instance   *requirements.Instance
	Plan       *allocation.Plan
	Allocation *allocation.Allocation
}

// PrettyConfiguration echoes the objective parameters.
func PrettyConfiguration(w io.Writer, opts allocation.Options) {
	weighting := "relative"
	if opts.Absolute {
		weighting = "absolute"
	}
	fmt.Fprintf(w, "Gamma: %g\n", opts.Gamma)
	fmt.Fprintf(w, "T-min: %g (max weight %g)\n", opts.TMin(), opts.MaxWeight)
	fmt.Fprintf(w, "Weights: %s\n", weighting)
}

// PrettyRequirements lists the parsed requirements with aligned columns.
func PrettyRequirements(w io.Writer, inst *requirements.Instance) {
	intervals := make([]string, len(inst.Requirements))
	namePad, intervalPad := 0, 0
	for i, r := range inst.Requirements {
		intervals[i] = format.Interval(r.Interval.Lower, r.Interval.Upper)
		namePad = max(namePad, utf8.RuneCountInString(r.Name))
		intervalPad = max(intervalPad, utf8.RuneCountInString(intervals[i]))
	}

	fmt.Fprintf(w, "Requirements:\n")
	for i, r := range inst.Requirements {
		fmt.Fprintf(w, "%s: interval = %s | target = %s\n",
			pad(r.Name, namePad), pad(intervals[i], intervalPad), r.Target)
	}
}

// PrettyConstraints reports which bound constraints were imposed.
func PrettyConstraints(w io.Writer, plan *allocation.Plan) {
	fmt.Fprintf(w, "\nAdding constraints...\n")
	if plan.UpperBounded {
		fmt.Fprintf(w, "Can reach total, adding upper bound constraints...\n")
	} else {
		fmt.Fprintf(w, "Upper bounds sum below total, penalising them instead...\n")
	}
	if plan.LowerBounded {
		fmt.Fprintf(w, "Can stay below total, adding lower bound constraints...\n")
	} else {
		fmt.Fprintf(w, "Lower bounds sum above total, penalising them instead...\n")
	}
}

// PrettySolution prints the solver outcome and one line per portion.
func PrettySolution(w io.Writer, alloc *allocation.Allocation) {
	namePad := 0
	for _, portion := range alloc.Portions {
		namePad = max(namePad, utf8.RuneCountInString(portion.Name))
	}

	fmt.Fprintf(w, "\nSolver status: %s (%d iterations)\n", alloc.Status, alloc.Iterations)
	fmt.Fprintf(w, "The optimal value is %g\n", alloc.Value)
	fmt.Fprintf(w, "A solution is:\n")
	for _, portion := range alloc.Portions {
		quantity := format.Quantity(portion.Quantity)
		if alloc.Priced {
			fmt.Fprintf(w, "%s: %s units | %s\n", pad(portion.Name, namePad), quantity, format.Currency(portion.Price))
		} else {
			fmt.Fprintf(w, "%s: %s units\n", pad(portion.Name, namePad), quantity)
		}
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, report Report) {
	PrettyConfiguration(w, report.Plan.Options)
	PrettyRequirements(w, report.Instance)
	PrettyConstraints(w, report.Plan)
	if report.Allocation != nil {
		PrettySolution(w, report.Allocation)
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, report Report) {
	alloc := report.Allocation
	if alloc == nil {
		return
	}
	fmt.Fprintf(w, `"name","quantity"`)
	if alloc.Priced {
		fmt.Fprintf(w, `,"price"`)
	}
	fmt.Fprintf(w, "\n")
	for _, portion := range alloc.Portions {
		fmt.Fprintf(w, `"%s","%s"`, strings.ReplaceAll(portion.Name, `"`, `""`), format.Quantity(portion.Quantity))
		if alloc.Priced {
			fmt.Fprintf(w, `,"%.2f"`, portion.Price)
		}
		fmt.Fprintf(w, "\n")
	}
}

// pad appends spaces to s until it is width runes wide.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
