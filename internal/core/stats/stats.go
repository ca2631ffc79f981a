// Package stats computes the descriptive statistics used by the usage report.
package stats

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrEmpty is returned when a statistic is requested over no values.
var ErrEmpty = errors.New("stats: empty sample")

// Summary holds descriptive statistics for one sample.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Sum    float64 `json:"sum"`
}

// Describe computes mean, median, min, max and sum of values. The input is
// not modified.
func Describe(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmpty
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := Sum(sorted)
	return Summary{
		Count:  len(sorted),
		Mean:   sum / float64(len(sorted)),
		Median: medianSorted(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Sum:    sum,
	}, nil
}

// Sum adds up values.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
