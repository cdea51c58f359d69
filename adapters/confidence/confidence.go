// Package confidence implements the cross-stage weakest-link confidence
// model: each stage's confidence is the prior stage's confidence minus a
// non-negative penalty, floored at 0 and ceilinged at 1
// (spec.md §3, §4.2-§4.4).
package confidence

import "chillgrid/domain/signal"

// Propagate applies a stage's penalty (a non-negative amount to subtract)
// to the prior stage's confidence.
func Propagate(prior signal.Confidence, penalty float64) signal.Confidence {
	return prior.ApplyPenalty(penalty)
}

// ChannelConfidence is the minimum of a channel's contributing component
// confidences (e.g. unit confidence and physics confidence, spec.md §4.2.4).
func ChannelConfidence(components ...signal.Confidence) signal.Confidence {
	return signal.MinConfidence(components...)
}

// StageConfidence is the minimum across a set of per-channel confidences —
// the weakest-link rule applied at stage granularity.
func StageConfidence(channels ...signal.Confidence) signal.Confidence {
	return signal.MinConfidence(channels...)
}

// Monotonic reports whether confidence did not increase from prior to
// current, the invariant spec.md §8 requires for every stage but Stage 0.
func Monotonic(prior, current signal.Confidence) bool {
	return current <= prior
}
