package derive

import (
	"testing"

	"chillgrid/domain/signal"
)

func buildSeries(n int, lift, heatReject float64) []signal.DerivedQuantities {
	out := make([]signal.DerivedQuantities, n)
	for i := range out {
		out[i] = signal.DerivedQuantities{
			Time:         signal.SampleTime(i * 900),
			Lift:         lift,
			HeatRejectKW: heatReject,
		}
	}
	return out
}

func TestFoulingBaselines_TooShortSeriesReturnsNil(t *testing.T) {
	series := buildSeries(windowSamples-1, 8, 400)
	if got := FoulingBaselines(series); got != nil {
		t.Errorf("expected nil for series shorter than one window, got %d entries", len(got))
	}
}

func TestFoulingBaselines_StableSeriesIsClean(t *testing.T) {
	series := buildSeries(windowSamples*2, 8, 400)
	got := FoulingBaselines(series)
	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(got))
	}
	for i, f := range got {
		if f.Suspected {
			t.Errorf("window %d: expected a perfectly stable series to not be suspected", i)
		}
		if f.LiftDeviation != 0 {
			t.Errorf("window %d: expected zero lift deviation, got %v", i, f.LiftDeviation)
		}
	}
}

func TestFoulingBaselines_RisingLiftIsSuspected(t *testing.T) {
	series := make([]signal.DerivedQuantities, windowSamples*2)
	for i := range series {
		lift := 8.0
		if i >= windowSamples {
			lift = 10.0 // 25% above the first window, about 11% above the whole-series mean of 9
		}
		series[i] = signal.DerivedQuantities{Time: signal.SampleTime(i * 900), Lift: lift, HeatRejectKW: 400}
	}
	got := FoulingBaselines(series)
	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(got))
	}
	if !got[1].Suspected {
		t.Error("expected the elevated-lift window to be flagged suspected")
	}
}

func TestPercentDeviation_ZeroBaselineIsZero(t *testing.T) {
	if got := percentDeviation(5, 0); got != 0 {
		t.Errorf("expected 0 for zero baseline, got %v", got)
	}
}

func TestHuntingEvents_TooShortSeriesReturnsNil(t *testing.T) {
	series := buildSeries(windowSamples-1, 8, 400)
	got := HuntingEvents(series, func(d signal.DerivedQuantities) float64 { return d.CHWST })
	if got != nil {
		t.Errorf("expected nil for series shorter than one window, got %d entries", len(got))
	}
}

func TestHuntingEvents_OscillatingControlIsDetected(t *testing.T) {
	series := make([]signal.DerivedQuantities, windowSamples)
	for i := range series {
		chwst := 6.5
		if i%2 == 1 {
			chwst = 7.0 // 0.5C alternation, above huntingMinAmplitude
		}
		series[i] = signal.DerivedQuantities{Time: signal.SampleTime(i * 900), CHWST: chwst}
	}
	got := HuntingEvents(series, func(d signal.DerivedQuantities) float64 { return d.CHWST })
	if len(got) != 1 {
		t.Fatalf("expected 1 window, got %d", len(got))
	}
	if !got[0].Detected {
		t.Error("expected alternating CHWST to trigger hunting detection")
	}
	if got[0].SignReversals < 3 {
		t.Errorf("expected several sign reversals, got %d", got[0].SignReversals)
	}
}

func TestHuntingEvents_StableControlIsNotDetected(t *testing.T) {
	series := buildSeries(windowSamples, 8, 400)
	for i := range series {
		series[i].CHWST = 6.7
	}
	got := HuntingEvents(series, func(d signal.DerivedQuantities) float64 { return d.CHWST })
	if len(got) != 1 {
		t.Fatalf("expected 1 window, got %d", len(got))
	}
	if got[0].Detected {
		t.Error("expected a constant control variable to not trigger hunting detection")
	}
}
