// Package format renders quantities and money for human-readable output.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Quantity returns a value with two decimals and no grouping (e.g., "1234.50").
func Quantity(amount float64) string {
	if math.Abs(amount) < 0.005 {
		amount = 0
	}
	return fmt.Sprintf("%.2f", amount)
}

// Interval renders a closed interval the way requirements list it, e.g. "[2, 8]".
func Interval(lower, upper float64) string {
	return fmt.Sprintf("[%g, %g]", lower, upper)
}

// formatPositiveCurrency groups thousands with the English number printer.
func formatPositiveCurrency(value float64) string {
	return printer.Sprintf("%.2f", value)
}
