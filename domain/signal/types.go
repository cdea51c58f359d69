// Package signal defines the core data model shared by every pipeline stage:
// the Signal itself, the tagged variants produced by Stage 1-3 classification
// and decoding, and the per-stage confidence/metrics records. These are plain
// owned data — no stage mutates another stage's view, it produces a new one.
package signal

import (
	"sort"

	"chillgrid/domain/core"
)

// ChannelKind is the physical channel a Signal measures.
type ChannelKind string

const (
	ChannelCHWST ChannelKind = "CHWST" // chilled-water supply temperature
	ChannelCHWRT ChannelKind = "CHWRT" // chilled-water return temperature
	ChannelCDWRT ChannelKind = "CDWRT" // condenser-water return temperature
	ChannelFlow  ChannelKind = "FLOW"
	ChannelPower ChannelKind = "POWER"
	ChannelLoad  ChannelKind = "LOAD"
	ChannelOther ChannelKind = "OTHER"
)

// MandatoryChannels lists the five Bare Minimum Data channels (see glossary).
var MandatoryChannels = []ChannelKind{ChannelCHWST, ChannelCHWRT, ChannelCDWRT, ChannelFlow, ChannelPower}

// IsMandatory reports whether k participates in BMD requirements.
func (k ChannelKind) IsMandatory() bool {
	for _, m := range MandatoryChannels {
		if m == k {
			return true
		}
	}
	return false
}

// EquipmentProfile selects the operational-state thresholds in effect (spec.md §4.2.3, §9).
type EquipmentProfile string

const (
	EquipmentScrew       EquipmentProfile = "screw"
	EquipmentCentrifugal EquipmentProfile = "centrifugal"
	EquipmentBoiler      EquipmentProfile = "boiler"
	EquipmentAuto        EquipmentProfile = "auto"
)

// StateThresholds returns (load_pct, delta_t_min) for the profile. "auto"
// and unrecognised profiles fall back to the 15%/0.5 default per spec.md §9
// — the caller is responsible for recording the warning this implies.
func (p EquipmentProfile) StateThresholds() (loadPct, deltaTMin float64) {
	switch p {
	case EquipmentScrew:
		return 15.0, 0.5
	case EquipmentCentrifugal:
		return 30.0, 0.8
	case EquipmentBoiler:
		return 20.0, 1.0
	default:
		return 15.0, 0.5
	}
}

// SampleTime is a raw per-sample timestamp: an opaque count of seconds,
// either a true epoch or a "serial zero" origin. Only ordering and
// intervals are load-bearing; calendar mapping is optional metadata.
type SampleTime float64

// Sub returns the interval in seconds between two sample times.
func (t SampleTime) Sub(other SampleTime) float64 { return float64(t - other) }

// Sample is a single (timestamp, value) observation.
type Sample struct {
	Time  SampleTime
	Value float64
}

// Signal is an ordered sequence of samples for one physical channel at one
// piece of equipment. Invariant: after ingestion, Samples is strictly
// increasing in Time (MergeDuplicates drops repeated timestamps;
// CheckMonotonic detects any remaining reversal).
type Signal struct {
	ID             core.SignalID
	Channel        ChannelKind
	ReportedUnit   string // as found in the source file header, "" if unknown
	CanonicalUnit  UnitCategory
	SourceFile     string
	VendorHint     string
	Samples        []Sample
	ConvertedValue []float64 // same length as Samples, populated by Stage 1b; nil until then
}

// Times returns the sample timestamps as a plain slice.
func (s *Signal) Times() []SampleTime {
	out := make([]SampleTime, len(s.Samples))
	for i, smp := range s.Samples {
		out[i] = smp.Time
	}
	return out
}

// RawValues returns the raw (pre-conversion) sample values.
func (s *Signal) RawValues() []float64 {
	out := make([]float64, len(s.Samples))
	for i, smp := range s.Samples {
		out[i] = smp.Value
	}
	return out
}

// EffectiveValues returns ConvertedValue when present, else raw values —
// the canonical view every downstream stage should read.
func (s *Signal) EffectiveValues() []float64 {
	if s.ConvertedValue != nil {
		return s.ConvertedValue
	}
	return s.RawValues()
}

// MergeDuplicates merges samples sharing an identical timestamp. Equal-value
// duplicates collapse silently; non-equal duplicates keep the earlier-indexed
// record and return a warning string (spec.md §5 ordering guarantees).
func (s *Signal) MergeDuplicates() []string {
	if len(s.Samples) < 2 {
		return nil
	}
	var warnings []string
	merged := make([]Sample, 0, len(s.Samples))
	merged = append(merged, s.Samples[0])
	for _, smp := range s.Samples[1:] {
		last := &merged[len(merged)-1]
		if smp.Time == last.Time {
			if smp.Value != last.Value {
				warnings = append(warnings, "duplicate timestamp with differing value: kept earlier-indexed record")
			}
			continue
		}
		merged = append(merged, smp)
	}
	s.Samples = merged
	return warnings
}

// CheckMonotonic reports whether timestamps are strictly increasing. It must
// be called after MergeDuplicates; the orchestrator treats a false result as
// a timestamp reversal (a HALT unless TolerateReversal is set, in which
// case it sorts the samples).
func (s *Signal) CheckMonotonic() bool {
	return sort.SliceIsSorted(s.Samples, func(i, j int) bool { return s.Samples[i].Time < s.Samples[j].Time }) &&
		isStrictlyIncreasing(s.Samples)
}

func isStrictlyIncreasing(samples []Sample) bool {
	for i := 1; i < len(samples); i++ {
		if samples[i].Time <= samples[i-1].Time {
			return false
		}
	}
	return true
}

// UnitCategory is the canonical physical-quantity category a channel's
// values are expressed in after Stage 1b conversion.
type UnitCategory string

const (
	UnitTemperatureC UnitCategory = "temperature_c"
	UnitFlowM3s      UnitCategory = "flow_m3s"
	UnitPowerKW      UnitCategory = "power_kw"
	UnitDimensionless UnitCategory = "dimensionless"
	UnitUnknown      UnitCategory = "unknown"
)

// Confidence is a scalar in [0,1]: an initial 1.0 reduced by additive
// penalties (never below 0), taken as the minimum across contributing
// channels per spec.md §3 ("weakest-link").
type Confidence float64

// Clamp returns c bounded to [0,1].
func (c Confidence) Clamp() Confidence {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ApplyPenalty subtracts a penalty, clamping at 0.
func (c Confidence) ApplyPenalty(p float64) Confidence {
	return (c - Confidence(p)).Clamp()
}

// MinConfidence returns the weakest-link confidence across a set of channels.
func MinConfidence(cs ...Confidence) Confidence {
	if len(cs) == 0 {
		return 1.0
	}
	min := cs[0]
	for _, c := range cs[1:] {
		if c < min {
			min = c
		}
	}
	return min
}
