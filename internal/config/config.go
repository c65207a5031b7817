// Package config defines the data structures related to configuration and
// includes functions for loading it from defaults, a YAML file, the
// environment and command line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/woptim/pkg/constants"
	"github.com/iwvelando/woptim/pkg/validation"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for woptim.
type Configuration struct {
	Solver  SolverConfig  `mapstructure:"solver" yaml:"solver"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output,omitempty"`
}

// SolverConfig holds the parameters of the objective and of the solver.
type SolverConfig struct {
	Gamma         float64 `mapstructure:"gamma" yaml:"gamma"`                 // target penalty scale
	TMin          float64 `mapstructure:"tmin" yaml:"tMin"`                   // max weight is 1/tMin
	Absolute      bool    `mapstructure:"absolute" yaml:"absolute"`           // uniform weights
	Accuracy      float64 `mapstructure:"accuracy" yaml:"accuracy"`           // relative multiplier accuracy
	MaxIterations int     `mapstructure:"maxiterations" yaml:"maxIterations"` // bisection step limit
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputfile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv
}

// Flag names bound into the configuration.
const (
	FlagGamma        = "gamma"
	FlagTMin         = "t-min"
	FlagAbsolute     = "absolute"
	FlagOutputFormat = "output-format"
	FlagLogLevel     = "log-level"
)

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	FlagGamma:        "solver.gamma",
	FlagTMin:         "solver.tmin",
	FlagAbsolute:     "solver.absolute",
	FlagOutputFormat: "output.format",
	FlagLogLevel:     "logging.level",
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Configuration {
	return Configuration{
		Solver: SolverConfig{
			Gamma:         constants.DefaultGamma,
			TMin:          constants.DefaultTMin,
			Accuracy:      constants.DefaultAccuracy,
			MaxIterations: constants.DefaultMaxIterations,
		},
		Logging: LoggingConfig{
			Level:  constants.DefaultLogLevel,
			Format: constants.DefaultLogFormat,
		},
		Output: OutputConfig{
			Format: constants.OutputFormatPretty,
		},
	}
}

// LoadConfiguration builds the configuration. Precedence, highest first:
// flags changed on the command line, WOPTIM_* environment variables, the
// YAML file at configPath (skipped when empty), defaults. flags may be nil.
func LoadConfiguration(configPath string, flags *pflag.FlagSet) (*Configuration, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("solver.gamma", defaults.Solver.Gamma)
	v.SetDefault("solver.tmin", defaults.Solver.TMin)
	v.SetDefault("solver.absolute", defaults.Solver.Absolute)
	v.SetDefault("solver.accuracy", defaults.Solver.Accuracy)
	v.SetDefault("solver.maxiterations", defaults.Solver.MaxIterations)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.outputfile", defaults.Logging.OutputFile)
	v.SetDefault("output.format", defaults.Output.Format)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("unable to bind flag %s: %w", name, err)
			}
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks every field that has a restricted domain.
func (c *Configuration) Validate() error {
	s := c.Solver
	if err := validation.ValidateSolverParameters(s.Gamma, s.TMin, s.Accuracy, s.MaxIterations); err != nil {
		return err
	}
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	return validation.ValidateOutputFormat(c.Output.Format)
}
