// Package decode implements the Stage 1a encoding decoder: an 8-rule,
// percentile-robust priority table mapping a signal's raw value range to
// a physical-unit encoding (spec.md §4.2.1).
package decode

import (
	"chillgrid/domain/signal"
	"chillgrid/internal/robust"
)

// Decide inspects stats and returns the encoding decision that applies,
// per the priority table where the first matching rule wins.
func Decide(stats signal.RawStats) signal.EncodingDecision {
	switch {
	case stats.P995 <= 1.05 && stats.Min >= -0.05:
		return signal.NewEncodingDecision(signal.EncodingFraction01, 1.0, 1, stats.P995)
	case stats.P995 <= 110 && stats.Min >= -5:
		return signal.NewEncodingDecision(signal.EncodingPercent0100, 100, 2, stats.P995)
	case stats.P995 > 9000 && stats.P995 <= 11000:
		return signal.NewEncodingDecision(signal.EncodingCounts10k, 10000, 3, stats.P995)
	case stats.P995 > 900 && stats.P995 <= 1100:
		return signal.NewEncodingDecision(signal.EncodingCounts1k, 1000, 4, stats.P995)
	case stats.P995 > 90000 && stats.P995 <= 110000:
		return signal.NewEncodingDecision(signal.EncodingCounts100k, 100000, 5, stats.P995)
	case stats.P995 > 30000:
		return signal.NewEncodingDecision(signal.EncodingLargeRawCounts, stats.P995, 6, stats.P995)
	case stats.P995 > 150 && stats.P995 <= 30000:
		return signal.NewEncodingDecision(signal.EncodingUnscaledAnalog, stats.P995, 7, stats.P995)
	default:
		scale := stats.P995 - stats.P05
		if scale <= 0 {
			return signal.NewEncodingDecision(signal.EncodingFallback, 100, 8, stats.P995)
		}
		d := signal.NewEncodingDecision(signal.EncodingPercentileRange, scale, 8, stats.P995)
		d.Kind = signal.EncodingPercentileRange
		return d
	}
}

// Normalize applies a decision's scale (and, for PercentileRange, its
// offset) to a raw value and clips the result to [0, 1.2] to preserve
// transient overshoot (spec.md §4.2.1).
func Normalize(decision signal.EncodingDecision, raw float64, p05 float64) float64 {
	var v float64
	if decision.Kind == signal.EncodingPercentileRange {
		v = (raw - p05) / decision.ScaleFactor
	} else if decision.Kind == signal.EncodingFallback {
		v = raw / decision.ScaleFactor
	} else {
		v = raw / decision.ScaleFactor
	}
	if v < 0 {
		return 0
	}
	if v > 1.2 {
		return 1.2
	}
	return v
}

// DecodeSignal computes RawStats, the encoding decision, and the
// normalised value series for one signal's raw values.
func DecodeSignal(raw []float64) (signal.RawStats, signal.EncodingDecision, []float64, error) {
	stats, err := robust.Summarize(raw)
	if err != nil {
		return signal.RawStats{}, signal.EncodingDecision{}, nil, err
	}
	if stats.Count == 0 {
		return stats, signal.EncodingDecision{Kind: signal.EncodingNoData}, nil, nil
	}

	decision := Decide(stats)
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = Normalize(decision, v, stats.P05)
	}
	return stats, decision, out, nil
}
