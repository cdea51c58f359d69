// Package gaps implements Stage 2: change-of-value-aware interval and gap
// classification on raw (pre-synchronisation) timestamps, plus
// exclusion-window candidate detection (spec.md §4.3).
package gaps

import (
	"math"
	"sort"
	"strings"

	"chillgrid/domain/core"
	"chillgrid/domain/signal"
)

// ClassifyInterval assigns a GapClass to the interval of length deltaS
// against nominal step t.
func ClassifyInterval(deltaS, nominalStepS float64) signal.GapClass {
	switch {
	case deltaS <= 1.5*nominalStepS:
		return signal.GapNormal
	case deltaS <= 4*nominalStepS:
		return signal.GapMinor
	default:
		return signal.GapMajor
	}
}

// ClassifySemantic assigns a GapSemantic to a MinorGap/MajorGap interval
// from the values on either side. physicsViolation forces SensorAnomaly
// regardless of magnitude (spec.md §4.3).
func ClassifySemantic(class signal.GapClass, before, after float64, physicsViolation bool) signal.GapSemantic {
	if class == signal.GapNormal {
		return signal.SemanticNotApplicable
	}
	if physicsViolation {
		return signal.SemanticSensorAnomaly
	}

	absJump := math.Abs(after - before)
	if absJump > 5 {
		return signal.SemanticSensorAnomaly
	}

	relChange := 0.0
	if before != 0 {
		relChange = absJump / math.Abs(before)
	} else if after != 0 {
		relChange = 1.0
	}
	if relChange < 0.005 {
		return signal.SemanticCovConstant
	}
	return signal.SemanticCovMinor
}

// BuildIntervals classifies every consecutive-sample interval of a signal.
func BuildIntervals(times []signal.SampleTime, values []float64, nominalStepS float64, physicsViolations []bool) []signal.Interval {
	if len(times) < 2 {
		return nil
	}
	out := make([]signal.Interval, 0, len(times)-1)
	for i := 0; i < len(times)-1; i++ {
		deltaS := times[i+1].Sub(times[i])
		class := ClassifyInterval(deltaS, nominalStepS)
		violation := i < len(physicsViolations) && physicsViolations[i]
		semantic := ClassifySemantic(class, values[i], values[i+1], violation)
		out = append(out, signal.Interval{
			StartIdx: i, EndIdx: i + 1,
			StartTime: times[i], EndTime: times[i+1],
			DurationS: deltaS, Class: class, Semantic: semantic,
		})
	}
	return out
}

// Penalty returns the confidence penalty a gap semantic contributes
// (spec.md §4.3 penalty table). ExclusionPenalty is applied separately
// when a row falls inside an exclusion window, since that is a row-level
// rather than a gap-level condition.
func Penalty(sem signal.GapSemantic) float64 { return sem.Penalty() }

const ExclusionPenalty = 0.03

// ChannelPenalty sums the penalties for all of a channel's gaps.
func ChannelPenalty(intervals []signal.Interval) float64 {
	total := 0.0
	for _, iv := range intervals {
		total += Penalty(iv.Semantic)
	}
	return total
}

// StagePenalty averages per-channel penalties to a single Stage-2 penalty.
func StagePenalty(channelPenalties []float64) float64 {
	if len(channelPenalties) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range channelPenalties {
		sum += p
	}
	return sum / float64(len(channelPenalties))
}

// ChannelMajorGaps is one channel's MajorGap intervals, used as input to
// exclusion-window candidate detection.
type ChannelMajorGaps struct {
	Channel   signal.ChannelKind
	Intervals []signal.Interval
}

const minExclusionHours = 8.0
const minOverlappingChannels = 2

// FindExclusionCandidates unions MajorGap intervals across channels and
// proposes a candidate for any union region >= 8 hours overlapping on >= 2
// mandatory channels (spec.md §4.3). Candidates get a stable id derived
// from their sorted affected channels and time bounds, so re-running over
// identical inputs reproduces the same candidate set.
func FindExclusionCandidates(channels []ChannelMajorGaps) []signal.ExclusionWindow {
	type span struct {
		start, end signal.SampleTime
		channel    string
	}
	var spans []span
	for _, ch := range channels {
		for _, iv := range ch.Intervals {
			if iv.Class != signal.GapMajor {
				continue
			}
			spans = append(spans, span{start: iv.StartTime, end: iv.EndTime, channel: string(ch.Channel)})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var out []signal.ExclusionWindow
	used := make([]bool, len(spans))
	for i := range spans {
		if used[i] {
			continue
		}
		groupStart, groupEnd := spans[i].start, spans[i].end
		channelSet := map[string]bool{spans[i].channel: true}
		used[i] = true
		changed := true
		for changed {
			changed = false
			for j := range spans {
				if used[j] {
					continue
				}
				if spans[j].start <= groupEnd && spans[j].end >= groupStart {
					if spans[j].start < groupStart {
						groupStart = spans[j].start
					}
					if spans[j].end > groupEnd {
						groupEnd = spans[j].end
					}
					channelSet[spans[j].channel] = true
					used[j] = true
					changed = true
				}
			}
		}

		if len(channelSet) < minOverlappingChannels {
			continue
		}
		durationS := groupEnd.Sub(groupStart)
		if durationS < minExclusionHours*3600 {
			continue
		}

		sortedChannels := make([]string, 0, len(channelSet))
		for c := range channelSet {
			sortedChannels = append(sortedChannels, c)
		}
		sort.Strings(sortedChannels)

		id := core.NewExclusionWindowID(sortedChannels, int64(groupStart), int64(groupEnd))
		out = append(out, signal.ExclusionWindow{
			ID:               string(id),
			Start:            groupStart,
			End:              groupEnd,
			AffectedChannels: sortedChannels,
			DurationS:        durationS,
			Reason:           signal.SemanticUnknown,
			Approved:         false,
		})
	}
	return out
}

// DescribeChannels renders a window's affected channels for display.
func DescribeChannels(w signal.ExclusionWindow) string {
	return strings.Join(w.AffectedChannels, ",")
}
