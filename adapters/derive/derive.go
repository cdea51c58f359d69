// Package derive implements Stage 4: ΔT, cooling load, COP, Carnot
// baseline, hunting, and fouling, with component confidence propagation
// (spec.md §4.5). No condition here HALTs the pipeline; an invalid input
// leaves the cell unset (valid=false) and lowers its component confidence.
package derive

import "math"

const (
	waterDensityKgM3 = 1000.0
	specificHeatKJKgK = 4.186
)

// DeltaT returns CHWRT - CHWST.
func DeltaT(chwrt, chwst float64) float64 { return chwrt - chwst }

// Lift returns CDWRT - CHWST.
func Lift(cdwrt, chwst float64) float64 { return cdwrt - chwst }

// CoolingLoadKW computes Q; valid is false (Q treated Missing) unless
// flow>0, deltaT>0, and both temperatures were present.
func CoolingLoadKW(flowM3s, deltaT float64, temperaturesPresent bool) (q float64, valid bool) {
	if !temperaturesPresent || flowM3s <= 0 || deltaT <= 0 {
		return 0, false
	}
	return flowM3s * waterDensityKgM3 * specificHeatKJKgK * deltaT, true
}

// COP computes Q/Power, validated to the plausible band [2.0, 7.0].
func COP(q, powerKW float64, qValid bool) (cop float64, valid bool) {
	if !qValid || powerKW <= 0 {
		return 0, false
	}
	cop = q / powerKW
	if cop < 2.0 || cop > 7.0 {
		return 0, false
	}
	return cop, true
}

// CarnotCOP computes the reversible-cycle baseline COP from CHWST (°C) and
// lift (°C), valid only for lift > 0.
func CarnotCOP(chwstC, lift float64) (carnot float64, valid bool) {
	if lift <= 0 {
		return 0, false
	}
	return (chwstC + 273.15) / lift, true
}

// NormalizedCOP divides COP by its Carnot baseline.
func NormalizedCOP(cop, carnot float64) (norm float64, valid bool) {
	if carnot <= 0 {
		return 0, false
	}
	return cop / carnot, true
}

// EfficiencyBand labels a normalised COP into the spec's interpretation bands.
func EfficiencyBand(norm float64) string {
	switch {
	case norm <= 0.3:
		return "inefficient"
	case norm <= 0.5:
		return "typical"
	default:
		return "exceptional"
	}
}

// QConfidence folds additive penalties onto a base confidence, per
// spec.md §4.5's component-confidence table.
func QConfidence(base float64, flowMissing, deltaTInvalid bool, deltaT float64) float64 {
	penalty := 0.0
	if flowMissing {
		penalty += 0.30
	}
	if deltaTInvalid {
		penalty += 0.20
	}
	if math.Abs(deltaT) < 1 {
		penalty += 0.10
	} else if math.Abs(deltaT) > 15 {
		penalty += 0.05
	}
	c := base * (1 - penalty)
	if c < 0 {
		return 0
	}
	return c
}

// COPConfidence folds Q's confidence with power-specific penalties.
func COPConfidence(qConf float64, powerConf float64, powerMissing, copOutOfRange, copNormalizedImplausible bool) float64 {
	penalty := 0.0
	if powerMissing {
		penalty += 1.00
	}
	if copOutOfRange {
		penalty += 0.50
	}
	if copNormalizedImplausible {
		penalty += 0.20
	}
	c := qConf * powerConf * (1 - penalty)
	if c < 0 {
		return 0
	}
	return c
}

// HuntingSeverity labels a cycles-per-hour figure.
func HuntingSeverity(cyclesPerHour float64) string {
	switch {
	case cyclesPerHour < 0.2:
		return "none"
	case cyclesPerHour < 1.0:
		return "minor"
	default:
		return "major"
	}
}

// CountSignReversals counts sign reversals of consecutive differences in
// values whose magnitude is >= minAmplitude, for the hunting detector's
// sliding-window scan.
func CountSignReversals(values []float64, minAmplitude float64) int {
	if len(values) < 3 {
		return 0
	}
	diffs := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if math.Abs(d) >= minAmplitude {
			diffs = append(diffs, d)
		}
	}
	reversals := 0
	for i := 1; i < len(diffs); i++ {
		if (diffs[i] > 0) != (diffs[i-1] > 0) {
			reversals++
		}
	}
	return reversals
}

// HuntConfidence returns the confidence for a hunting detection outcome.
func HuntConfidence(reversals int, insufficientData bool) float64 {
	switch {
	case insufficientData:
		return 0.00
	case reversals >= 3:
		return 0.95
	default:
		return 0.50
	}
}

// EvaporatorFoulingSeverity labels an evaporator UFOA drop, given as a
// positive percentage (larger = worse; callers negate the UFOA deviation).
func EvaporatorFoulingSeverity(deviationPct float64) string {
	switch {
	case deviationPct < 10:
		return "clean"
	case deviationPct <= 25:
		return "minor_fouling"
	default:
		return "major_fouling"
	}
}

// CondenserFoulingSeverity labels a condenser lift deviation.
func CondenserFoulingSeverity(deviationPct float64) string {
	switch {
	case deviationPct < 5:
		return "clean"
	case deviationPct <= 15:
		return "minor_fouling"
	default:
		return "major_fouling"
	}
}

// FoulingConfidence starts at 0.60 and subtracts per spec.md §4.5.
func FoulingConfidence(observationDays float64, adverseFactors int) float64 {
	c := 0.60
	if observationDays < 7 {
		c -= 0.20
	}
	c -= 0.10 * float64(adverseFactors)
	if c < 0 {
		return 0
	}
	return c
}
