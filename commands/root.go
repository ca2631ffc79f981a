package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penwyp/usage-stats/internal/analyzer"
	"github.com/penwyp/usage-stats/internal/config"
	"github.com/penwyp/usage-stats/internal/util"
)

const (
	appName   = "usage-stats"
	usageLine = "Usage: " + appName + " /path/to/openrouter_activity.csv"
)

type options struct {
	debug      bool
	logFormat  string
	configFile string
}

// NewRootCommand builds the command line interface.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   appName + " <path-to-csv> [flags]",
		Short: "Token usage statistics for an OpenRouter activity export",
		Long: `usage-stats reads an OpenRouter activity CSV export and reports token and cost
statistics to calibrate the token estimates of the pricing model.

Rows that were cancelled or lack positive prompt and completion token counts
are ignored.

Examples:
  usage-stats activity.csv                        # Text report
  usage-stats activity.csv --target-app MyApp     # Recommend estimates for MyApp
  usage-stats activity.csv -o json                # JSON report
  usage-stats activity.csv --config stats.yaml    # Override estimate buffers`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return analyzer.ErrArgumentCount
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, v, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.debug, "debug", false,
		"Write debug logs to stderr")
	flags.StringVar(&opts.logFormat, "log-format", string(util.FormatText),
		"Debug log format (text, json)")
	flags.StringVar(&opts.configFile, "config", "",
		"YAML file with report settings")
	flags.String("target-app", config.Default().TargetApp,
		"Application to compute recommended estimates for")
	flags.Int("min-app-requests", config.Default().MinAppRequests,
		"Minimum requests for an application to be listed")
	flags.Int("top-models", config.Default().TopModels,
		"Number of models to list")
	flags.StringP("output", "o", config.OutputText,
		"Output format (text, json)")

	_ = v.BindPFlag(config.KeyTargetApp, flags.Lookup("target-app"))
	_ = v.BindPFlag(config.KeyMinAppRequests, flags.Lookup("min-app-requests"))
	_ = v.BindPFlag(config.KeyTopModels, flags.Lookup("top-models"))
	_ = v.BindPFlag(config.KeyOutput, flags.Lookup("output"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, v *viper.Viper, opts *options, path string) error {
	format := util.LogFormat(opts.logFormat)
	if format != util.FormatText && format != util.FormatJSON {
		return errors.Errorf("unsupported log format %q (want %s or %s)",
			opts.logFormat, util.FormatText, util.FormatJSON)
	}
	if opts.debug {
		util.InitLogger("debug", cmd.ErrOrStderr(), format)
	} else {
		util.InitLogger("info", nil, format)
	}

	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return err
	}
	util.LogDebug("Resolved configuration",
		util.Field{Key: "target_app", Value: cfg.TargetApp},
		util.Field{Key: "output", Value: cfg.Output})

	a := analyzer.New(&analyzer.Config{
		InputPath: path,
		Report:    cfg,
		Out:       cmd.OutOrStdout(),
	})
	return a.Run()
}

// Execute runs the command with the process arguments.
func Execute() error {
	return ExecuteArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteArgs runs the command with args, printing the report and any error
// message to out.
func ExecuteArgs(args []string, out, errOut io.Writer) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.Execute()
	if err != nil {
		util.LogError("Analysis failed", util.Field{Key: "error", Value: err.Error()})
		printError(out, err)
	}
	return err
}

func printError(w io.Writer, err error) {
	switch {
	case errors.Is(err, analyzer.ErrArgumentCount):
		fmt.Fprintln(w, usageLine)
	case errors.Is(err, analyzer.ErrNoData):
		fmt.Fprintln(w, "❌ No valid data found in CSV file!")
	default:
		fmt.Fprintf(w, "❌ Error: %v\n", err)
	}
}
