// Package approvalui is the gin-based web surface for reviewing and
// approving exclusion-window candidates (spec.md §6, "Approval interface").
// It is a convenience on top of the sidecar-file approval mechanism: every
// decision made here is written back as the same sidecar file format the
// core re-reads before Stage 3.
package approvalui

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"chillgrid/domain/signal"
	"chillgrid/ports"
)

// Server serves the exclusion-window approval UI and API.
type Server struct {
	router  *gin.Engine
	store   ports.ApprovalStore
	pending map[string][]signal.ExclusionWindow // runID -> candidates; nothing in this repository fills it
}

// NewServer creates an approval UI server backed by store.
func NewServer(store ports.ApprovalStore) *Server {
	s := &Server{
		router:  gin.Default(),
		store:   store,
		pending: make(map[string][]signal.ExclusionWindow),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/runs/:run_id/exclusion-windows", s.listCandidates)
	s.router.POST("/runs/:run_id/exclusion-windows/:window_id/approve", s.approve)
	s.router.POST("/runs/:run_id/exclusion-windows/:window_id/reject", s.reject)
}

// SetCandidates registers the exclusion-window candidates a run proposed,
// so the UI has something to list before the sidecar file exists.
func (s *Server) SetCandidates(runID string, windows []signal.ExclusionWindow) {
	s.pending[runID] = windows
}

func (s *Server) listCandidates(c *gin.Context) {
	runID := c.Param("run_id")
	c.JSON(http.StatusOK, s.pending[runID])
}

func (s *Server) approve(c *gin.Context) {
	s.decide(c, true)
}

func (s *Server) reject(c *gin.Context) {
	s.decide(c, false)
}

func (s *Server) decide(c *gin.Context, approved bool) {
	runID := c.Param("run_id")
	windowID := c.Param("window_id")
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	decision := ports.ApprovalDecision{WindowID: windowID, Approved: approved, Reason: body.Reason}
	existing, err := s.store.ReadApprovals(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	existing = upsert(existing, decision)
	if err := writeBack(c.Request.Context(), s.store, runID, existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, decision)
}

func upsert(decisions []ports.ApprovalDecision, d ports.ApprovalDecision) []ports.ApprovalDecision {
	for i, existing := range decisions {
		if existing.WindowID == d.WindowID {
			decisions[i] = d
			return decisions
		}
	}
	return append(decisions, d)
}

// writeBack is a narrow seam so the sidecar store can persist approvals
// without the ApprovalStore interface needing a dedicated write method for
// decisions (it already has one for candidates).
func writeBack(ctx context.Context, store ports.ApprovalStore, runID string, decisions []ports.ApprovalDecision) error {
	type decisionWriter interface {
		WriteApprovals(ctx context.Context, runID string, decisions []ports.ApprovalDecision) error
	}
	if w, ok := store.(decisionWriter); ok {
		return w.WriteApprovals(ctx, runID, decisions)
	}
	return nil
}

// Run starts the approval UI on addr, blocking until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return srv.ListenAndServe()
}
