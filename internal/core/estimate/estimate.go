// Package estimate turns observed token and cost statistics into the
// buffered estimates and cost projections used by the pricing model.
package estimate

import "math"

// Buffers are the multipliers applied to the observed average and median.
type Buffers struct {
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
}

// DefaultBuffers adds 20% on the average or 50% on the median.
var DefaultBuffers = Buffers{Average: 1.2, Median: 1.5}

// Usage describes how many requests each user tier makes.
type Usage struct {
	AnonymousPerDay float64 `json:"anonymousPerDay"`
	NamedPerDay     float64 `json:"namedPerDay"`
	DaysPerMonth    float64 `json:"daysPerMonth"`
}

// DefaultUsage assumes 10 requests/day for anonymous users and 20 for users
// signed in with a named provider, over a 30 day month.
var DefaultUsage = Usage{AnonymousPerDay: 10, NamedPerDay: 20, DaysPerMonth: 30}

// Tokens is a recommended input/output token pair.
type Tokens struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Projection is the projected spend derived from the average cost per request.
type Projection struct {
	PerRequest       float64 `json:"perRequest"`
	DailyAnonymous   float64 `json:"dailyAnonymous"`
	DailyNamed       float64 `json:"dailyNamed"`
	MonthlyAnonymous float64 `json:"monthlyAnonymous"`
	MonthlyNamed     float64 `json:"monthlyNamed"`
}

// Recommend returns the larger of the buffered average and the buffered
// median, each rounded to the nearest token.
func Recommend(avg, median float64, b Buffers) int {
	return int(math.Max(math.Round(avg*b.Average), math.Round(median*b.Median)))
}

// RecommendTokens applies Recommend to prompt and completion statistics.
func RecommendTokens(avgPrompt, medianPrompt, avgCompletion, medianCompletion float64, b Buffers) Tokens {
	return Tokens{
		Input:  Recommend(avgPrompt, medianPrompt, b),
		Output: Recommend(avgCompletion, medianCompletion, b),
	}
}

// Project scales the average cost per request by the usage assumptions.
func Project(avgCostPerRequest float64, u Usage) Projection {
	dailyAnon := avgCostPerRequest * u.AnonymousPerDay
	dailyNamed := avgCostPerRequest * u.NamedPerDay
	return Projection{
		PerRequest:       avgCostPerRequest,
		DailyAnonymous:   dailyAnon,
		DailyNamed:       dailyNamed,
		MonthlyAnonymous: dailyAnon * u.DaysPerMonth,
		MonthlyNamed:     dailyNamed * u.DaysPerMonth,
	}
}
