// Package statusapi is a read-only chi router exposing run progress,
// including a server-sent-events stream. The CLI starts it only under the
// serve subcommand; `run --verbose` logs progress to stderr instead.
package statusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"chillgrid/domain/run"
)

// Event is one progress notification, broadcast to SSE subscribers.
type Event struct {
	RunID      string  `json:"run_id"`
	Stage      string  `json:"stage"`
	Status     string  `json:"status"` // "started", "finished", "failed", "halted"
	Confidence float64 `json:"confidence,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// Server exposes run status over HTTP and implements ports.ProgressSink.
type Server struct {
	router *chi.Mux

	mu        sync.RWMutex
	manifests map[string]*run.Manifest
	subs      map[chan Event]struct{}
}

// NewServer creates a status API server.
func NewServer() *Server {
	s := &Server{
		router:    chi.NewRouter(),
		manifests: make(map[string]*run.Manifest),
		subs:      make(map[chan Event]struct{}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/runs/{run_id}", s.getRun)
	s.router.Get("/runs/{run_id}/events", s.streamEvents)
}

// RegisterManifest makes a run's manifest available for status queries.
func (s *Server) RegisterManifest(m *run.Manifest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[string(m.ID)] = m
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")
	s.mu.RLock()
	m, ok := s.manifests[runID]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, _ := json.Marshal(ev)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcast(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// StageStarted implements ports.ProgressSink.
func (s *Server) StageStarted(stageName string) {
	s.broadcast(Event{Stage: stageName, Status: "started"})
}

// StageFinished implements ports.ProgressSink.
func (s *Server) StageFinished(stageName string, success bool, confidence float64) {
	status := "finished"
	if !success {
		status = "failed"
	}
	s.broadcast(Event{Stage: stageName, Status: status, Confidence: confidence})
}

// Halted implements ports.ProgressSink.
func (s *Server) Halted(stageName string, reason string) {
	s.broadcast(Event{Stage: stageName, Status: "halted", Reason: reason})
}

// Run starts the status API on addr, blocking until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return srv.ListenAndServe()
}
