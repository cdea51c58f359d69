// Package physics implements Stage 1d: range checks, relational checks,
// and the confidence contributions they produce (spec.md §4.2.4).
package physics

import "chillgrid/domain/core"

// RangeResult is the outcome of checking a canonical value against
// channel-specific bounds. InRange is false when the value is outside the
// range; HardFail is true only for the HALT-triggering
// negative-flow/negative-power conditions.
type RangeResult struct {
	InRange  bool
	HardFail bool
	Err      error
}

// CheckCHWST validates chilled-water supply temperature, °C.
func CheckCHWST(v float64) RangeResult { return RangeResult{InRange: v >= 3 && v <= 20} }

// CheckCHWRT validates chilled-water return temperature, °C.
func CheckCHWRT(v float64) RangeResult { return RangeResult{InRange: v >= 5 && v <= 30} }

// CheckCDWRT validates condenser-water return temperature, °C.
func CheckCDWRT(v float64) RangeResult { return RangeResult{InRange: v >= 15 && v <= 45} }

// CheckFlow validates flow, m^3/s. Negative flow is a HALT condition.
func CheckFlow(v float64) RangeResult {
	if v < 0 {
		return RangeResult{InRange: false, HardFail: true, Err: core.ErrNegativeFlow}
	}
	return RangeResult{InRange: true}
}

// CheckPower validates power, kW. Negative power is a HALT condition.
func CheckPower(v float64) RangeResult {
	if v < 0 {
		return RangeResult{InRange: false, HardFail: true, Err: core.ErrNegativePower}
	}
	return RangeResult{InRange: true}
}

// RelationalViolationRate computes the fraction of paired rows violating
// a relation (e.g. CHWRT >= CHWST). Rows is the total row count considered.
func RelationalViolationRate(violations, rows int) float64 {
	if rows == 0 {
		return 0
	}
	return float64(violations) / float64(rows)
}

// PhysicsConfidence returns 1.0 - 0.10*(violationPct/1) per spec.md §4.2.4,
// where violationPct is a fraction in [0,1].
func PhysicsConfidence(violationPct float64) float64 {
	c := 1.0 - 0.10*violationPct
	if c < 0 {
		return 0
	}
	return c
}

// AggregateHalt reports whether an aggregate relational-violation rate
// should HALT the pipeline: >1% with no valid sensor-reversal salvage.
func AggregateHalt(violationRate float64, salvaged bool) bool {
	return violationRate > 0.01 && !salvaged
}
