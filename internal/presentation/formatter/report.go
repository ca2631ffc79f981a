package formatter

import (
	"github.com/pkg/errors"

	"github.com/penwyp/usage-stats/internal/config"
	"github.com/penwyp/usage-stats/internal/core/estimate"
	"github.com/penwyp/usage-stats/internal/core/stats"
	"github.com/penwyp/usage-stats/internal/data/aggregator"
)

// Report is everything the usage report prints, computed up front so that
// rendering never touches the raw records.
type Report struct {
	Requests   int            `json:"requests"`
	Prompt     stats.Summary  `json:"promptTokens"`
	Completion stats.Summary  `json:"completionTokens"`
	Total      stats.Summary  `json:"totalTokens"`
	Cost       *stats.Summary `json:"cost,omitempty"`
	Apps       []GroupReport  `json:"apps"`
	Models     []GroupReport  `json:"topModels"`
	Target     *TargetReport  `json:"target,omitempty"`
	Settings   ReportSettings `json:"settings"`
}

// ReportSettings echoes the thresholds the report was built with.
type ReportSettings struct {
	TargetApp      string `json:"targetApp"`
	MinAppRequests int    `json:"minAppRequests"`
	TopModels      int    `json:"topModels"`
}

// GroupReport summarises one application or model.
type GroupReport struct {
	Name       string         `json:"name"`
	Requests   int            `json:"requests"`
	Prompt     stats.Summary  `json:"promptTokens"`
	Completion stats.Summary  `json:"completionTokens"`
	Cost       *stats.Summary `json:"cost,omitempty"`
}

// TargetReport holds the recommendation for the target application.
type TargetReport struct {
	GroupReport
	Current     estimate.Tokens      `json:"current"`
	Recommended estimate.Tokens      `json:"recommended"`
	Usage       estimate.Usage       `json:"usage"`
	Projection  *estimate.Projection `json:"projection,omitempty"`
}

// BuildReport computes the report for the records held by agg.
func BuildReport(agg *aggregator.Aggregator, cfg config.Config) (Report, error) {
	all := agg.All()
	if all.Count() == 0 {
		return Report{}, errors.Wrap(stats.ErrEmpty, "no records to report")
	}

	overall, err := summarise(all)
	if err != nil {
		return Report{}, err
	}
	total, err := stats.Describe(all.TotalTokens())
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Requests:   overall.Requests,
		Prompt:     overall.Prompt,
		Completion: overall.Completion,
		Total:      total,
		Cost:       overall.Cost,
		Apps:       []GroupReport{},
		Models:     []GroupReport{},
		Settings: ReportSettings{
			TargetApp:      cfg.TargetApp,
			MinAppRequests: cfg.MinAppRequests,
			TopModels:      cfg.TopModels,
		},
	}

	for _, g := range agg.Apps().All() {
		if g.Count() < cfg.MinAppRequests {
			continue
		}
		gr, err := summarise(g)
		if err != nil {
			return Report{}, err
		}
		report.Apps = append(report.Apps, gr)
	}

	ranked := agg.Models().RankedByCount()
	if len(ranked) > cfg.TopModels {
		ranked = ranked[:cfg.TopModels]
	}
	for _, g := range ranked {
		gr, err := summarise(g)
		if err != nil {
			return Report{}, err
		}
		report.Models = append(report.Models, gr)
	}

	if g, ok := agg.Apps().Get(cfg.TargetApp); ok {
		target, err := buildTarget(g, cfg)
		if err != nil {
			return Report{}, err
		}
		report.Target = target
	}

	return report, nil
}

func buildTarget(g *aggregator.Group, cfg config.Config) (*TargetReport, error) {
	gr, err := summarise(g)
	if err != nil {
		return nil, err
	}

	current := estimate.Tokens{
		Input:  cfg.Estimate.CurrentInput,
		Output: cfg.Estimate.CurrentOutput,
	}
	recommended := estimate.RecommendTokens(
		gr.Prompt.Mean, gr.Prompt.Median,
		gr.Completion.Mean, gr.Completion.Median,
		cfg.Buffers(),
	)

	target := &TargetReport{
		GroupReport: gr,
		Current:     current,
		Recommended: recommended,
		Usage:       cfg.Usage(),
	}
	if gr.Cost != nil {
		projection := estimate.Project(gr.Cost.Mean, cfg.Usage())
		target.Projection = &projection
	}
	return target, nil
}

func summarise(g *aggregator.Group) (GroupReport, error) {
	prompt, err := stats.Describe(g.PromptTokens())
	if err != nil {
		return GroupReport{}, errors.Wrapf(err, "prompt tokens of %q", g.Key)
	}
	completion, err := stats.Describe(g.CompletionTokens())
	if err != nil {
		return GroupReport{}, errors.Wrapf(err, "completion tokens of %q", g.Key)
	}

	gr := GroupReport{
		Name:       g.Key,
		Requests:   g.Count(),
		Prompt:     prompt,
		Completion: completion,
	}
	if costs := g.Costs(); len(costs) > 0 {
		cost, err := stats.Describe(costs)
		if err != nil {
			return GroupReport{}, err
		}
		gr.Cost = &cost
	}
	return gr, nil
}
