package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/woptim/internal/allocation"
	"github.com/iwvelando/woptim/internal/config"
	"github.com/iwvelando/woptim/internal/requirements"
	"github.com/iwvelando/woptim/pkg/constants"
	"github.com/iwvelando/woptim/pkg/output"
	"github.com/iwvelando/woptim/pkg/solver"
	"github.com/iwvelando/woptim/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	flagInput  = "input"
	flagConfig = "config"
)

type rootOptions struct {
	input      string
	configPath string
}

func newRootCommand() *cobra.Command {
	var opts rootOptions
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "woptim",
		Short: "Allocate a total across requirements by weighted least squares",
		Long: `woptim splits a total quantity across named requirements. Each requirement
has an interval and a target; the allocation minimises weighted squared
violations of the intervals plus a gamma-scaled squared deviation from the
targets, subject to the allocation summing to the total.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, flagInput, "i", "", "path to the requirements file (JSON or YAML)")
	flags.StringVar(&opts.configPath, flagConfig, "", "path to an optional YAML configuration file")
	flags.Float64(config.FlagGamma, defaults.Solver.Gamma, "weight of the target penalty")
	flags.Float64(config.FlagTMin, defaults.Solver.TMin, "smallest value weights are derived from; max weight is 1/t-min")
	flags.Bool(config.FlagAbsolute, defaults.Solver.Absolute, "use a weight of 1 for every bound and target")
	flags.String(config.FlagOutputFormat, defaults.Output.Format, "output format: pretty, csv")
	flags.String(config.FlagLogLevel, defaults.Logging.Level, "log level: debug, info, warn, error")
	_ = cmd.MarkFlagRequired(flagInput)

	return cmd
}

// execute runs the root command against args, writing the report to stdout
// and diagnostics to stderr.
func execute(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCommand()
	cmd.SetArgs(normalizeArgs(cmd.Flags(), args))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// normalizeArgs rewrites single-dash long flags such as -absolute into their
// double-dash form. Shorthands, values and anything after "--" are kept.
func normalizeArgs(flags *pflag.FlagSet, args []string) []string {
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i, arg := range normalized {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(arg[1:], "=")
		if len(name) > 1 && flags.Lookup(name) != nil {
			normalized[i] = "-" + arg
		}
	}
	return normalized
}

func run(cmd *cobra.Command, opts rootOptions) error {
	conf, err := config.LoadConfiguration(opts.configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initializeLogger(conf.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := allocate(cmd.OutOrStdout(), logger, conf, opts.input); err != nil {
		logger.Error("failed to compute allocation",
			zap.String("op", "main"),
			zap.String("input", opts.input),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func allocate(w io.Writer, logger *zap.Logger, conf *config.Configuration, input string) error {
	inst, err := requirements.Load(input)
	if err != nil {
		return err
	}

	for _, warning := range validation.RequirementWarnings(inst.Total, portionBounds(inst)) {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	opts, err := allocation.NewOptions(conf.Solver.Gamma, conf.Solver.TMin, conf.Solver.Absolute)
	if err != nil {
		return err
	}
	bisection, err := solver.NewBisection(solver.Termination{
		Accuracy:      conf.Solver.Accuracy,
		MaxIterations: conf.Solver.MaxIterations,
	})
	if err != nil {
		return err
	}
	allocator, err := allocation.NewAllocator(logger, bisection, opts)
	if err != nil {
		return err
	}

	plan, alloc, err := allocator.Allocate(inst)
	report := output.Report{Instance: inst, Plan: plan, Allocation: alloc}

	switch conf.Output.Format {
	case constants.OutputFormatPretty:
		if plan != nil {
			output.PrettyFormat(w, report)
		}
	case constants.OutputFormatCSV:
		if alloc != nil {
			output.CsvFormat(w, report)
		}
	}
	return err
}

func portionBounds(inst *requirements.Instance) []validation.PortionBounds {
	bounds := make([]validation.PortionBounds, len(inst.Requirements))
	for i, r := range inst.Requirements {
		bounds[i] = validation.PortionBounds{
			Name:   r.Name,
			Lower:  r.Interval.Lower,
			Upper:  r.Interval.Upper,
			Target: r.ResolvedTarget(),
		}
	}
	return bounds
}
