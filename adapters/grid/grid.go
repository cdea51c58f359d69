// Package grid implements Stage 3: construction of a uniform timestamp
// grid and two-pointer nearest-neighbour synchronisation of each channel
// onto it (spec.md §4.4). Unlike the bucket/resampling style used
// elsewhere in this codebase for exploratory lag analysis, synchronisation
// here performs no interpolation: a grid tick takes the nearest raw sample
// within tolerance, or is marked Missing.
package grid

import (
	"math"

	"chillgrid/domain/signal"
)

const toleranceS = 1800.0

// BuildGrid ceils startUnix to the nearest multiple of stepS and returns a
// strictly increasing sequence of grid ticks up to endUnix inclusive.
func BuildGrid(startUnix, endUnix, stepS float64) []signal.SampleTime {
	if stepS <= 0 || endUnix < startUnix {
		return nil
	}
	start := math.Ceil(startUnix/stepS) * stepS
	n := int(math.Floor((endUnix-start)/stepS)) + 1
	if n <= 0 {
		return nil
	}
	out := make([]signal.SampleTime, n)
	for i := 0; i < n; i++ {
		out[i] = signal.SampleTime(start + float64(i)*stepS)
	}
	return out
}

// qualityFor maps an absolute distance in seconds to an AlignmentQuality tier.
func qualityFor(d float64) signal.AlignmentQuality {
	switch {
	case d < 60:
		return signal.AlignExact
	case d < 300:
		return signal.AlignClose
	case d <= toleranceS:
		return signal.AlignInterp
	default:
		return signal.AlignMissing
	}
}

// Align performs the two-pointer O(N+M) nearest-neighbour scan of one
// channel's raw samples onto a grid. raw must be strictly increasing in
// time (a violation is a programmer error per spec.md §7, not checked here
// — the orchestrator enforces it upstream).
func Align(gridTicks []signal.SampleTime, raw []signal.Sample) []signal.ChannelAlignment {
	out := make([]signal.ChannelAlignment, len(gridTicks))
	j := 0
	for i, g := range gridTicks {
		for j < len(raw) && raw[j].Time < g {
			j++
		}
		// Candidates are raw[j-1] (last before g) and raw[j] (first >= g).
		var best signal.Sample
		var bestDist float64 = math.Inf(1)
		bestIdx := -1
		if j > 0 {
			d := float64(g) - float64(raw[j-1].Time)
			if d < bestDist {
				best, bestDist, bestIdx = raw[j-1], d, j-1
			}
		}
		if j < len(raw) {
			d := float64(raw[j].Time) - float64(g)
			if d < bestDist {
				best, bestDist, bestIdx = raw[j], d, j
			}
		}

		if bestIdx < 0 || bestDist > toleranceS {
			out[i] = signal.ChannelAlignment{Quality: signal.AlignMissing, SourceIndex: -1}
			continue
		}
		out[i] = signal.ChannelAlignment{
			Value:         best.Value,
			Quality:       qualityFor(bestDist),
			SourceOffsetS: float64(best.Time) - float64(g),
			SourceIndex:   bestIdx,
		}
	}
	return out
}

// AlignBruteForce is the O(N*M) reference implementation used by tests to
// verify Align's two-pointer result against an exhaustive nearest-within-
// tolerance search (spec.md §8's property-based equivalence test).
func AlignBruteForce(gridTicks []signal.SampleTime, raw []signal.Sample) []signal.ChannelAlignment {
	out := make([]signal.ChannelAlignment, len(gridTicks))
	for i, g := range gridTicks {
		var best signal.Sample
		bestDist := math.Inf(1)
		bestIdx := -1
		for idx, r := range raw {
			d := math.Abs(float64(r.Time) - float64(g))
			if d < bestDist {
				best, bestDist, bestIdx = r, d, idx
			}
		}
		if bestIdx < 0 || bestDist > toleranceS {
			out[i] = signal.ChannelAlignment{Quality: signal.AlignMissing, SourceIndex: -1}
			continue
		}
		out[i] = signal.ChannelAlignment{Value: best.Value, Quality: qualityFor(bestDist), SourceOffsetS: float64(best.Time) - float64(g), SourceIndex: bestIdx}
	}
	return out
}

// RowChannelInput is one channel's contribution when classifying a grid row.
type RowChannelInput struct {
	Channel        signal.ChannelKind
	Alignment      signal.ChannelAlignment
	SourceSemantic signal.GapSemantic // the Stage-2 semantic at the chosen raw point, if any
}

// ClassifyRow determines a grid row's classification and confidence, given
// whether it falls in an approved exclusion window and its mandatory
// channels' alignments (spec.md §4.4 row classification).
func ClassifyRow(inExclusionWindow bool, mandatoryInputs []RowChannelInput) (signal.RowClassification, signal.Confidence) {
	if inExclusionWindow {
		return signal.RowExcluded, 0
	}

	for _, in := range mandatoryInputs {
		if in.Alignment.Quality == signal.AlignMissing {
			return signal.RowMajorGap, 0
		}
		if in.SourceSemantic == signal.SemanticSensorAnomaly {
			return signal.RowMajorGap, 0
		}
	}

	alignments := make([]signal.ChannelAlignment, len(mandatoryInputs))
	for i, in := range mandatoryInputs {
		alignments[i] = in.Alignment
	}
	return signal.RowValid, signal.RowConfidence(alignments)
}

// CoverageTier classifies valid fraction v into a named tier and penalty.
func CoverageTier(v float64) (tier string, penalty float64) {
	switch {
	case v >= 0.95:
		return "excellent", 0.00
	case v >= 0.90:
		return "good", 0.02
	case v >= 0.80:
		return "fair", 0.05
	default:
		return "poor", 0.10
	}
}
