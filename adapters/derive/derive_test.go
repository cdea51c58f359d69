package derive

import "testing"

func TestDeltaT(t *testing.T) {
	if got := DeltaT(12, 7); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestLift(t *testing.T) {
	if got := Lift(30, 7); got != 23 {
		t.Errorf("expected 23, got %v", got)
	}
}

func TestCoolingLoadKW_InvalidWhenFlowOrDeltaTNonPositive(t *testing.T) {
	if _, valid := CoolingLoadKW(0, 5, true); valid {
		t.Error("expected invalid Q for zero flow")
	}
	if _, valid := CoolingLoadKW(0.1, 0, true); valid {
		t.Error("expected invalid Q for zero deltaT")
	}
	if _, valid := CoolingLoadKW(0.1, 5, false); valid {
		t.Error("expected invalid Q when temperatures absent")
	}
}

func TestCoolingLoadKW_ComputesSensibleHeatBalance(t *testing.T) {
	q, valid := CoolingLoadKW(0.05, 5, true)
	if !valid {
		t.Fatal("expected valid Q")
	}
	// Q = flow * rho * cp * dT = 0.05 * 1000 * 4.186 * 5
	want := 0.05 * 1000 * 4.186 * 5
	if q != want {
		t.Errorf("expected %v, got %v", want, q)
	}
	if q <= 0 {
		t.Error("expected positive cooling load")
	}
}

func TestCOP_OutsidePlausibleBandIsInvalid(t *testing.T) {
	if _, valid := COP(100, 10, true); valid {
		t.Error("expected COP above 7.0 to be invalid")
	}
	if _, valid := COP(10, 10, true); valid {
		t.Error("expected COP of 1.0 below 2.0 to be invalid")
	}
	if _, valid := COP(100, 0, true); valid {
		t.Error("expected zero power to be invalid")
	}
}

func TestCOP_WithinBandIsValid(t *testing.T) {
	cop, valid := COP(500, 100, true)
	if !valid {
		t.Fatal("expected COP of 5.0 to be valid")
	}
	if cop != 5 {
		t.Errorf("expected 5.0, got %v", cop)
	}
}

func TestCarnotCOP_NonPositiveLiftIsInvalid(t *testing.T) {
	if _, valid := CarnotCOP(7, 0); valid {
		t.Error("expected zero lift to be invalid")
	}
	if _, valid := CarnotCOP(7, -1); valid {
		t.Error("expected negative lift to be invalid")
	}
}

func TestNormalizedCOP(t *testing.T) {
	norm, valid := NormalizedCOP(5, 10)
	if !valid {
		t.Fatal("expected valid normalized COP")
	}
	if norm != 0.5 {
		t.Errorf("expected 0.5, got %v", norm)
	}
}

func TestQConfidence_AccumulatesPenalties(t *testing.T) {
	base := 1.0
	got := QConfidence(base, true, true, 0.5)
	// 0.30 (flow missing) + 0.20 (invalid) + 0.10 (|deltaT|<1) = 0.60 penalty
	want := base * (1 - 0.60)
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCOPConfidence_PowerMissingZeroesConfidence(t *testing.T) {
	got := COPConfidence(1.0, 1.0, true, false, false)
	if got != 0 {
		t.Errorf("expected zero confidence when power missing, got %v", got)
	}
}

func TestHuntingSeverity_Tiers(t *testing.T) {
	if HuntingSeverity(0.1) != "none" {
		t.Error("expected none below 0.2 cycles/hr")
	}
	if HuntingSeverity(0.5) != "minor" {
		t.Error("expected minor between 0.2 and 1.0 cycles/hr")
	}
	if HuntingSeverity(2.0) != "major" {
		t.Error("expected major at or above 1.0 cycles/hr")
	}
}

func TestCountSignReversals(t *testing.T) {
	values := []float64{0, 1, 0, 1, 0} // alternating, 4 diffs, 3 reversals
	if got := CountSignReversals(values, 0.1); got != 3 {
		t.Errorf("expected 3 reversals, got %d", got)
	}
}

func TestCountSignReversals_IgnoresSmallAmplitude(t *testing.T) {
	values := []float64{0, 0.01, 0, 0.01, 0}
	if got := CountSignReversals(values, 0.1); got != 0 {
		t.Errorf("expected 0 reversals below amplitude threshold, got %d", got)
	}
}

func TestFoulingSeverity_Tiers(t *testing.T) {
	if CondenserFoulingSeverity(2) != "clean" {
		t.Error("expected clean below 5%")
	}
	if CondenserFoulingSeverity(10) != "minor_fouling" {
		t.Error("expected minor fouling between 5% and 15%")
	}
	if CondenserFoulingSeverity(20) != "major_fouling" {
		t.Error("expected major fouling above 15%")
	}
}
