package signal

// EncodingKind tags the Stage 1a decision for how raw values map to
// physical units. Modeled as a closed tagged variant rather than a bare
// string so every switch over it is exhaustive-checkable at review time.
type EncodingKind string

const (
	EncodingFraction01      EncodingKind = "fraction_0_1"
	EncodingPercent0100     EncodingKind = "percent_0_100"
	EncodingCounts1k        EncodingKind = "counts_1k"
	EncodingCounts10k       EncodingKind = "counts_10k"
	EncodingCounts100k      EncodingKind = "counts_100k"
	EncodingLargeRawCounts  EncodingKind = "large_raw_counts"
	EncodingUnscaledAnalog  EncodingKind = "unscaled_analog"
	EncodingPercentileRange EncodingKind = "percentile_range"
	EncodingNoData          EncodingKind = "no_data"
	EncodingFallback        EncodingKind = "fallback"
)

// EncodingDecision is the output of the Stage 1a decoder for one Signal:
// the chosen encoding, the scale factor applied to recover physical units,
// and the rule index (1-8) that fired, for traceability.
type EncodingDecision struct {
	Kind        EncodingKind
	ScaleFactor float64
	RuleIndex   int
	P995        float64 // the 99.5th percentile the decision was made from
	Confidence  Confidence
}

// Scale applies the decision's scale factor to a raw value.
func (d EncodingDecision) Scale(raw float64) float64 { return raw * d.ScaleFactor }

// baseConfidence is the decoder's per-rule starting confidence before any
// downstream penalties are layered on (spec.md §4.1.4 rule table).
func (k EncodingKind) baseConfidence() Confidence {
	switch k {
	case EncodingFraction01, EncodingPercent0100, EncodingCounts1k, EncodingCounts10k, EncodingCounts100k:
		return 1.0
	case EncodingUnscaledAnalog:
		return 0.9
	case EncodingLargeRawCounts:
		return 0.75
	case EncodingPercentileRange:
		return 0.6
	case EncodingFallback:
		return 0.4
	case EncodingNoData:
		return 0.0
	default:
		return 0.5
	}
}

// NewEncodingDecision builds a decision with the kind's default base confidence.
func NewEncodingDecision(kind EncodingKind, scale float64, ruleIndex int, p995 float64) EncodingDecision {
	return EncodingDecision{Kind: kind, ScaleFactor: scale, RuleIndex: ruleIndex, P995: p995, Confidence: kind.baseConfidence()}
}

// UnitSource records whether a channel's canonical unit was taken verbatim
// from a recognised header unit, inferred from value-range heuristics, or
// could not be established at all.
type UnitSource string

const (
	UnitSourceHeader    UnitSource = "header"
	UnitSourceInferred  UnitSource = "inferred"
	UnitSourceUnknown   UnitSource = "unknown"
)

// UnitDecision is the Stage 1b output for one Signal.
type UnitDecision struct {
	Category        UnitCategory
	Source          UnitSource
	ConversionFactor float64 // multiply the raw sample value by this to reach Category's canonical unit
	Offset          float64 // additive offset applied after scaling (e.g. F->C)
	Confidence      Confidence
}

// Convert applies the decision's affine transform.
func (d UnitDecision) Convert(v float64) float64 { return v*d.ConversionFactor + d.Offset }

// OperationalState is the Stage 1c classification of equipment activity
// at a point in time.
type OperationalState string

const (
	StateActive  OperationalState = "active"
	StateStandby OperationalState = "standby"
	StateOff     OperationalState = "off"
	StateUnknown OperationalState = "unknown"
)
