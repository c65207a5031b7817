// Package constants provides shared constants for the woptim application.
package constants

// Solver defaults
const (
	// DefaultGamma scales the two-sided target penalty against the bound
	// violation penalties.
	DefaultGamma = 0.2

	// DefaultTMin is the smallest expected bound value. Its inverse caps the
	// relative weight of any single bound.
	DefaultTMin = 0.2

	// DefaultAccuracy is the relative accuracy of the multiplier search.
	DefaultAccuracy = 1e-12

	// DefaultMaxIterations bounds the number of bisection steps.
	DefaultMaxIterations = 500

	// SumTolerance is the tolerance used when checking that an allocation
	// reaches the requested total.
	SumTolerance = 1e-6
)

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Logging constants
const (
	// DefaultLogLevel is used when neither the configuration nor the CLI
	// sets a level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the encoder used for log output.
	DefaultLogFormat = "json"
)

// Configuration constants
const (
	// EnvPrefix prefixes every environment variable read by the configuration.
	EnvPrefix = "WOPTIM"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// ExampleInputFile is the example requirements file name
	ExampleInputFile = "requirements.json.example"
)
