package signal

import (
	"testing"
)

func TestMergeDuplicates_CollapsesEqualValues(t *testing.T) {
	s := &Signal{Samples: []Sample{
		{Time: 100, Value: 5},
		{Time: 100, Value: 5},
		{Time: 200, Value: 6},
	}}
	warnings := s.MergeDuplicates()
	if len(warnings) != 0 {
		t.Errorf("expected no warnings for equal-value duplicates, got %v", warnings)
	}
	if len(s.Samples) != 2 {
		t.Fatalf("expected 2 samples after merge, got %d", len(s.Samples))
	}
}

func TestMergeDuplicates_KeepsEarlierOnConflict(t *testing.T) {
	s := &Signal{Samples: []Sample{
		{Time: 100, Value: 5},
		{Time: 100, Value: 9},
	}}
	warnings := s.MergeDuplicates()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for conflicting duplicate, got %d", len(warnings))
	}
	if len(s.Samples) != 1 || s.Samples[0].Value != 5 {
		t.Errorf("expected earlier-indexed value 5 to survive, got %+v", s.Samples)
	}
}

func TestCheckMonotonic(t *testing.T) {
	increasing := &Signal{Samples: []Sample{{Time: 1}, {Time: 2}, {Time: 3}}}
	if !increasing.CheckMonotonic() {
		t.Error("expected strictly increasing samples to pass")
	}

	reversed := &Signal{Samples: []Sample{{Time: 1}, {Time: 3}, {Time: 2}}}
	if reversed.CheckMonotonic() {
		t.Error("expected out-of-order samples to fail")
	}

	repeated := &Signal{Samples: []Sample{{Time: 1}, {Time: 1}}}
	if repeated.CheckMonotonic() {
		t.Error("expected repeated timestamps to fail strict monotonicity")
	}
}

func TestEffectiveValues_PrefersConverted(t *testing.T) {
	s := &Signal{
		Samples:        []Sample{{Time: 1, Value: 10}, {Time: 2, Value: 20}},
		ConvertedValue: []float64{1, 2},
	}
	got := s.EffectiveValues()
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("expected converted values, got %v", got)
	}

	raw := &Signal{Samples: []Sample{{Time: 1, Value: 10}}}
	if got := raw.EffectiveValues(); got[0] != 10 {
		t.Errorf("expected raw fallback, got %v", got)
	}
}

func TestMinConfidence(t *testing.T) {
	if got := MinConfidence(); got != 1.0 {
		t.Errorf("expected 1.0 for no inputs, got %v", got)
	}
	if got := MinConfidence(0.9, 0.3, 0.7); got != 0.3 {
		t.Errorf("expected 0.3, got %v", got)
	}
}

func TestConfidence_ApplyPenaltyClampsAtZero(t *testing.T) {
	c := Confidence(0.2)
	if got := c.ApplyPenalty(0.5); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestStateThresholds_UnknownProfileFallsBackToDefault(t *testing.T) {
	load, deltaT := EquipmentProfile("nonexistent").StateThresholds()
	if load != 15.0 || deltaT != 0.5 {
		t.Errorf("expected default 15.0/0.5 fallback, got %v/%v", load, deltaT)
	}
}
