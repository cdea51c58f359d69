package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chillgrid/domain/core"
	"chillgrid/domain/run"
)

func TestGetRun_UnknownRunIsNotFound(t *testing.T) {
	s := NewServer()
	req := httptest.NewRequest(http.MethodGet, "/runs/missing", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRun_ReturnsRegisteredManifest(t *testing.T) {
	s := NewServer()
	m := run.New(run.Options{}, core.InputFingerprint(""))
	s.RegisterManifest(m)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+string(m.ID), nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got run.Manifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, m.ID, got.ID)
}

func TestBroadcast_DeliversToSubscribedChannel(t *testing.T) {
	s := NewServer()
	ch := make(chan Event, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	s.StageStarted("s0_classify")

	select {
	case ev := <-ch:
		assert.Equal(t, "s0_classify", ev.Stage)
		assert.Equal(t, "started", ev.Status)
	case <-time.After(time.Second):
		t.Fatal("expected broadcast event within timeout")
	}
}

func TestHalted_BroadcastsReason(t *testing.T) {
	s := NewServer()
	ch := make(chan Event, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	s.Halted("s1d_physics", "negative flow reading")

	ev := <-ch
	assert.Equal(t, "halted", ev.Status)
	assert.Equal(t, "negative flow reading", ev.Reason)
}
