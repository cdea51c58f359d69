package core

import (
	"testing"
	"time"
)

func TestTimestamp_BeforeAndAfter(t *testing.T) {
	earlier := NewTimestamp(time.Unix(1000, 0))
	later := NewTimestamp(time.Unix(2000, 0))
	if !earlier.Before(later) {
		t.Error("expected earlier.Before(later) to be true")
	}
	if !later.After(earlier) {
		t.Error("expected later.After(earlier) to be true")
	}
}

func TestTimestamp_IsZero(t *testing.T) {
	var zero Timestamp
	if !zero.IsZero() {
		t.Error("expected zero-value Timestamp to report IsZero")
	}
	if Now().IsZero() {
		t.Error("expected Now() to not be zero")
	}
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	original := NewTimestamp(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	data, err := original.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	var decoded Timestamp
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if !decoded.Time().Equal(original.Time()) {
		t.Errorf("expected round-tripped timestamp to match, got %v vs %v", decoded.Time(), original.Time())
	}
}
