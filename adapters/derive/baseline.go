package derive

import (
	"gonum.org/v1/gonum/stat"

	"chillgrid/domain/signal"
)

const (
	windowSamples       = 96 // ~1 day at 15-minute steps, also the hunting-detector window
	huntingMinAmplitude = 0.3
)

// FoulingBaselines splits a run's derived quantities into fixed-size windows
// and compares each window's mean Lift and load-normalised heat-rejection
// (a proxy for UFOA, spec.md §4.5.3) against the run's whole-series baseline,
// using gonum/stat for the mean computations (spec.md §9 domain stack).
func FoulingBaselines(series []signal.DerivedQuantities) []signal.FoulingIndicator {
	if len(series) < windowSamples {
		return nil
	}
	lifts := make([]float64, len(series))
	ufoaProxy := make([]float64, len(series))
	for i, d := range series {
		lifts[i] = d.Lift
		if d.Lift != 0 {
			ufoaProxy[i] = d.HeatRejectKW / d.Lift
		}
	}
	baselineLift := stat.Mean(lifts, nil)
	baselineUFOA := stat.Mean(ufoaProxy, nil)

	var out []signal.FoulingIndicator
	for start := 0; start+windowSamples <= len(series); start += windowSamples {
		end := start + windowSamples
		windowLift := stat.Mean(lifts[start:end], nil)
		windowUFOA := stat.Mean(ufoaProxy[start:end], nil)

		liftDevPct := percentDeviation(windowLift, baselineLift)
		ufoaDevPct := percentDeviation(windowUFOA, baselineUFOA)

		condenserSeverity := CondenserFoulingSeverity(liftDevPct)
		evapSeverity := EvaporatorFoulingSeverity(-ufoaDevPct)

		out = append(out, signal.FoulingIndicator{
			WindowStart:   series[start].Time,
			WindowEnd:     series[end-1].Time,
			LiftDeviation: liftDevPct,
			UFOADeviation: ufoaDevPct,
			Suspected:     condenserSeverity != "clean" || evapSeverity != "clean",
		})
	}
	return out
}

func percentDeviation(value, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (value - baseline) / baseline * 100
}

// HuntingEvents slides a 24-hour window over a control variable (CHWST,
// per spec.md §4.5.4) and flags windows whose sign-reversal count
// indicates hunting.
func HuntingEvents(series []signal.DerivedQuantities, controlVariable func(signal.DerivedQuantities) float64) []signal.HuntingEvent {
	if len(series) < windowSamples {
		return nil
	}
	values := make([]float64, len(series))
	for i, d := range series {
		values[i] = controlVariable(d)
	}

	var out []signal.HuntingEvent
	for start := 0; start+windowSamples <= len(series); start += windowSamples {
		end := start + windowSamples
		reversals := CountSignReversals(values[start:end], huntingMinAmplitude)
		hoursSpan := series[end-1].Time.Sub(series[start].Time) / 3600
		cyclesPerHour := 0.0
		if hoursSpan > 0 {
			cyclesPerHour = float64(reversals) / hoursSpan
		}
		out = append(out, signal.HuntingEvent{
			WindowStart:   series[start].Time,
			WindowEnd:     series[end-1].Time,
			SignReversals: reversals,
			Detected:      HuntingSeverity(cyclesPerHour) != "none",
		})
	}
	return out
}
