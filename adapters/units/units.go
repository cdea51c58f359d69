// Package units implements Stage 1b: unit verification and conversion for
// the mandatory temperature, flow, and power channels (spec.md §4.2.2).
package units

import "chillgrid/domain/signal"

// DecideTemperature chooses the source unit from the signal's mean value
// and returns a UnitDecision converting to canonical degrees Celsius.
func DecideTemperature(mean float64) signal.UnitDecision {
	switch {
	case mean >= 3 && mean <= 50:
		return signal.UnitDecision{Category: signal.UnitTemperatureC, Source: signal.UnitSourceInferred, ConversionFactor: 1, Offset: 0, Confidence: 1.0}
	case mean >= 37 && mean <= 120:
		// (F - 32) * 5/9 = F*5/9 - 32*5/9
		return signal.UnitDecision{Category: signal.UnitTemperatureC, Source: signal.UnitSourceInferred, ConversionFactor: 5.0 / 9.0, Offset: -32 * 5.0 / 9.0, Confidence: 0.98}
	case mean >= 273 && mean <= 323:
		return signal.UnitDecision{Category: signal.UnitTemperatureC, Source: signal.UnitSourceInferred, ConversionFactor: 1, Offset: -273.15, Confidence: 0.98}
	default:
		return signal.UnitDecision{Category: signal.UnitUnknown, Source: signal.UnitSourceUnknown, ConversionFactor: 1, Offset: 0, Confidence: 0.70}
	}
}

// DecideFlow chooses the source unit from the signal's max value and
// returns a UnitDecision converting to canonical m^3/s.
func DecideFlow(max float64) signal.UnitDecision {
	switch {
	case max < 1:
		return signal.UnitDecision{Category: signal.UnitFlowM3s, Source: signal.UnitSourceInferred, ConversionFactor: 1, Confidence: 1.0}
	case max >= 10 && max <= 500:
		return signal.UnitDecision{Category: signal.UnitFlowM3s, Source: signal.UnitSourceInferred, ConversionFactor: 1.0 / 1000.0, Confidence: 0.95}
	case max >= 50 && max <= 2000:
		return signal.UnitDecision{Category: signal.UnitFlowM3s, Source: signal.UnitSourceInferred, ConversionFactor: 6.309e-5, Confidence: 0.90}
	case max >= 500 && max <= 10000:
		return signal.UnitDecision{Category: signal.UnitFlowM3s, Source: signal.UnitSourceInferred, ConversionFactor: 1.0 / 3600.0, Confidence: 0.90}
	default:
		return signal.UnitDecision{Category: signal.UnitUnknown, Source: signal.UnitSourceUnknown, ConversionFactor: 1, Confidence: 0.70}
	}
}

// DecidePower chooses the source unit from the signal's max value (and an
// optional nameplate anchor, 0 disables anchoring) and returns a
// UnitDecision converting to canonical kW.
func DecidePower(max float64, nameplateKW float64) signal.UnitDecision {
	if nameplateKW > 0 {
		// A nameplate anchor picks whichever scale lands the signal's max
		// within a plausible multiple of rated capacity.
		switch {
		case max < 10 && max*1000 <= nameplateKW*1.5:
			return signal.UnitDecision{Category: signal.UnitPowerKW, Source: signal.UnitSourceHeader, ConversionFactor: 1000, Confidence: 0.97}
		case max > 10000 && max/1000 <= nameplateKW*1.5:
			return signal.UnitDecision{Category: signal.UnitPowerKW, Source: signal.UnitSourceHeader, ConversionFactor: 1.0 / 1000.0, Confidence: 0.97}
		case max <= nameplateKW*1.5:
			return signal.UnitDecision{Category: signal.UnitPowerKW, Source: signal.UnitSourceHeader, ConversionFactor: 1, Confidence: 0.97}
		}
	}
	switch {
	case max < 10:
		return signal.UnitDecision{Category: signal.UnitPowerKW, Source: signal.UnitSourceInferred, ConversionFactor: 1000, Confidence: 0.90}
	case max >= 50 && max <= 5000:
		return signal.UnitDecision{Category: signal.UnitPowerKW, Source: signal.UnitSourceInferred, ConversionFactor: 1, Confidence: 0.95}
	case max > 10000:
		return signal.UnitDecision{Category: signal.UnitPowerKW, Source: signal.UnitSourceInferred, ConversionFactor: 1.0 / 1000.0, Confidence: 0.90}
	default:
		return signal.UnitDecision{Category: signal.UnitUnknown, Source: signal.UnitSourceUnknown, ConversionFactor: 1, Confidence: 0.70}
	}
}

// Penalty returns the confidence penalty a unit decision's circumstances
// contribute, per spec.md §4.2.4's accumulation table.
func Penalty(d signal.UnitDecision, outOfRange bool) float64 {
	p := 0.0
	if d.Source == signal.UnitSourceUnknown {
		p += 0.30
	} else if d.Category == signal.UnitUnknown {
		p += 0.20
	}
	if outOfRange {
		p += 0.05
	}
	if d.ConversionFactor != 1 || d.Offset != 0 {
		p += 0.02
	}
	return p
}

// Confidence folds a unit decision's base confidence with its penalty,
// clamped to [0,1].
func Confidence(d signal.UnitDecision, outOfRange bool) signal.Confidence {
	return (signal.Confidence(1.0)).ApplyPenalty(Penalty(d, outOfRange))
}
