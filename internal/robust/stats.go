// Package robust computes the percentile-based summary statistics the
// Stage 1a encoding decoder relies on, favoring
// percentile estimators over min/max so a handful of outlier samples
// cannot flip a decision.
package robust

import (
	"math"

	"github.com/montanaflynn/stats"

	"chillgrid/domain/signal"
)

// Summarize computes a signal.RawStats from raw values. p995 (the 99.5th
// percentile) is used by the decoder instead of Max precisely because a
// single spike should not change the inferred encoding.
func Summarize(data []float64) (signal.RawStats, error) {
	if len(data) == 0 {
		return signal.RawStats{}, nil
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return signal.RawStats{}, err
	}
	std, err := stats.StandardDeviation(data)
	if err != nil {
		return signal.RawStats{}, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return signal.RawStats{}, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return signal.RawStats{}, err
	}
	p05, err := stats.Percentile(data, 0.5)
	if err != nil {
		return signal.RawStats{}, err
	}
	p995, err := stats.Percentile(data, 99.5)
	if err != nil {
		return signal.RawStats{}, err
	}

	return signal.RawStats{
		Count: len(data),
		Min:   min,
		Max:   max,
		Mean:  mean,
		Std:   std,
		P05:   p05,
		P995:  p995,
	}, nil
}

// MAD returns the median absolute deviation of data, a robust dispersion
// estimator. No pipeline stage calls it.
func MAD(data []float64) (float64, error) {
	median, err := stats.Median(data)
	if err != nil {
		return 0, err
	}
	deviations := make([]float64, len(data))
	for i, v := range data {
		deviations[i] = math.Abs(v - median)
	}
	return stats.Median(deviations)
}

// Percentile is a thin re-export so callers needn't import montanaflynn/stats
// directly for one-off percentile queries.
func Percentile(data []float64, p float64) (float64, error) {
	return stats.Percentile(data, p)
}
