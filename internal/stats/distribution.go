// Package stats computes summary distributions over per-sample values.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrEmptyDistribution is returned when no usable values are left to
// summarize. There is no valid zero-value Distribution.
var ErrEmptyDistribution = errors.New("no values to summarize")

// Distribution is a six-number summary of a value collection.
type Distribution struct {
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// Summarize computes the distribution of raw per-sample values. Values equal
// to the missing placeholder (".") are excluded before any statistic is
// computed; any other non-numeric value is an error.
func Summarize(values []string) (Distribution, error) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if v == "." {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Distribution{}, fmt.Errorf("invalid numeric value %q", v)
		}
		nums = append(nums, f)
	}
	return Of(nums)
}

// Of computes the distribution of an unordered value collection.
func Of(values []float64) (Distribution, error) {
	if len(values) == 0 {
		return Distribution{}, ErrEmptyDistribution
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return Distribution{
		Min:    sorted[0],
		Q25:    Quantile(sorted, 25),
		Median: Quantile(sorted, 50),
		Q75:    Quantile(sorted, 75),
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
	}, nil
}

// Quantile estimates the value at percentile p (0-100) of an ascending
// sorted sequence, linearly interpolating between order statistics.
// The sequence must not be empty.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	if p == 100 {
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lo := int(rank)
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
