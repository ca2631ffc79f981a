package aggregator

import (
	"sort"

	"github.com/penwyp/usage-stats/internal/core/model"
)

// Aggregator folds accepted usage records into the global sample and into
// per-application and per-model groups in a single pass.
type Aggregator struct {
	all    Group
	apps   *Groups
	models *Groups
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		apps:   newGroups(),
		models: newGroups(),
	}
}

// Add records r in the global sample, its application group and its model
// group.
func (a *Aggregator) Add(r model.UsageRecord) {
	a.all.Records = append(a.all.Records, r)
	a.apps.add(r.AppName, r)
	a.models.add(r.Model, r)
}

// Len returns the number of records added.
func (a *Aggregator) Len() int {
	return len(a.all.Records)
}

// All returns every record as a single group.
func (a *Aggregator) All() *Group {
	return &a.all
}

// Apps returns the records grouped by application name.
func (a *Aggregator) Apps() *Groups {
	return a.apps
}

// Models returns the records grouped by model.
func (a *Aggregator) Models() *Groups {
	return a.models
}

// Group is the list of records sharing one key.
type Group struct {
	Key     string
	Records []model.UsageRecord
}

// Count returns the number of records in the group.
func (g *Group) Count() int {
	return len(g.Records)
}

// PromptTokens returns the prompt token count of each record.
func (g *Group) PromptTokens() []float64 {
	return g.collect(func(r model.UsageRecord) float64 { return float64(r.PromptTokens) })
}

// CompletionTokens returns the completion token count of each record.
func (g *Group) CompletionTokens() []float64 {
	return g.collect(func(r model.UsageRecord) float64 { return float64(r.CompletionTokens) })
}

// TotalTokens returns the total token count of each record.
func (g *Group) TotalTokens() []float64 {
	return g.collect(func(r model.UsageRecord) float64 { return float64(r.TotalTokens()) })
}

// Costs returns the costs of the records that carry a positive cost.
func (g *Group) Costs() []float64 {
	var costs []float64
	for _, r := range g.Records {
		if r.HasCost() {
			costs = append(costs, r.Cost)
		}
	}
	return costs
}

func (g *Group) collect(value func(model.UsageRecord) float64) []float64 {
	out := make([]float64, len(g.Records))
	for i, r := range g.Records {
		out[i] = value(r)
	}
	return out
}

// Groups maps a key to its Group and remembers the order keys were first seen.
type Groups struct {
	order []*Group
	index map[string]*Group
}

func newGroups() *Groups {
	return &Groups{index: make(map[string]*Group)}
}

func (gs *Groups) add(key string, r model.UsageRecord) {
	g, ok := gs.index[key]
	if !ok {
		g = &Group{Key: key}
		gs.index[key] = g
		gs.order = append(gs.order, g)
	}
	g.Records = append(g.Records, r)
}

// Len returns the number of distinct keys.
func (gs *Groups) Len() int {
	return len(gs.order)
}

// Get returns the group for key.
func (gs *Groups) Get(key string) (*Group, bool) {
	g, ok := gs.index[key]
	return g, ok
}

// All returns the groups in first-encounter order.
func (gs *Groups) All() []*Group {
	return append([]*Group(nil), gs.order...)
}

// RankedByCount returns the groups by record count, largest first. Groups
// with equal counts keep their first-encounter order.
func (gs *Groups) RankedByCount() []*Group {
	ranked := gs.All()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count() > ranked[j].Count()
	})
	return ranked
}
