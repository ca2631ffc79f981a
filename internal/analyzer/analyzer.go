package analyzer

import (
	"io"
	"io/fs"
	"time"

	"github.com/pkg/errors"

	"github.com/penwyp/usage-stats/internal/config"
	"github.com/penwyp/usage-stats/internal/data/aggregator"
	"github.com/penwyp/usage-stats/internal/data/parser"
	"github.com/penwyp/usage-stats/internal/presentation/display"
	"github.com/penwyp/usage-stats/internal/presentation/formatter"
	"github.com/penwyp/usage-stats/internal/util"
)

type Config struct {
	InputPath string
	Report    config.Config
	Out       io.Writer
}

type Analyzer struct {
	config     *Config
	parser     *parser.Parser
	aggregator *aggregator.Aggregator
	terminal   *display.Terminal
}

func New(cfg *Config) *Analyzer {
	return &Analyzer{
		config:     cfg,
		parser:     parser.NewParser(),
		aggregator: aggregator.NewAggregator(),
		terminal:   display.NewTerminal(cfg.Out),
	}
}

// Run loads the export, builds the report and writes it. Nothing is written
// unless the whole report could be built.
func (a *Analyzer) Run() error {
	startTime := time.Now()
	path := a.config.InputPath
	util.LogInfo("Starting analysis of usage export", util.Field{Key: "path", Value: path})

	// Phase 1: Load and filter rows
	loadStart := time.Now()
	if err := a.parser.ParseFile(path, a.aggregator.Add); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &FileNotFoundError{Path: path}
		}
		return err
	}
	loadDuration := time.Since(loadStart)
	util.LogDebugf("Phase 1 - Load duration: %v, rows: %d, accepted: %d, skipped: %d",
		loadDuration, a.parser.Rows(), a.aggregator.Len(), a.parser.Skipped())

	if a.aggregator.Len() == 0 {
		return ErrNoData
	}

	// Phase 2: Aggregate statistics
	buildStart := time.Now()
	report, err := formatter.BuildReport(a.aggregator, a.config.Report)
	if err != nil {
		return errors.Wrap(err, "failed to build report")
	}
	buildDuration := time.Since(buildStart)
	util.LogDebugf("Phase 2 - Report duration: %v, apps: %d, models: %d",
		buildDuration, a.aggregator.Apps().Len(), a.aggregator.Models().Len())

	// Phase 3: Output
	outputStart := time.Now()
	err = a.output(report)
	util.LogDebugf("Phase 3 - Output duration: %v", time.Since(outputStart))

	util.LogDebugf("Total duration: %v", time.Since(startTime))
	return err
}

func (a *Analyzer) output(report formatter.Report) error {
	switch a.config.Report.Output {
	case config.OutputJSON:
		data, err := formatter.JSON(report)
		if err != nil {
			return errors.Wrap(err, "failed to encode report")
		}
		_, err = a.terminal.Write(append(data, '\n'))
		return err
	default:
		return a.terminal.WriteLines(formatter.TextLines(report))
	}
}
