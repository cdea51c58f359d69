// Package sidecar implements the file-based exclusion-window approval
// mechanism: the core writes proposed candidates to a JSON file, an
// external approver edits a decisions file, and the core re-reads it
// before Stage 3 (spec.md §6, §9 "message-passing boundary").
package sidecar

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"chillgrid/domain/signal"
	"chillgrid/ports"
)

// Store implements ports.ApprovalStore against a run's output directory.
type Store struct {
	outputDir string
}

// NewStore creates a sidecar approval store rooted at outputDir.
func NewStore(outputDir string) *Store {
	return &Store{outputDir: outputDir}
}

func (s *Store) candidatesPath(runID string) string {
	return filepath.Join(s.outputDir, runID, "exclusion_candidates.json")
}

func (s *Store) approvalsPath(runID string) string {
	return filepath.Join(s.outputDir, runID, "exclusion_approvals.json")
}

// WriteCandidates persists the proposed exclusion windows for a run. A nil
// windows slice is a no-op and leaves any existing candidates file as is.
func (s *Store) WriteCandidates(ctx context.Context, runID string, windows []signal.ExclusionWindow) error {
	if windows == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.candidatesPath(runID)), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(windows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.candidatesPath(runID), data, 0o644)
}

// ReadApprovals reads the approvals sidecar file. A missing file is not an
// error: it means no approvals have been recorded yet (spec.md §7,
// "unapproved exclusion windows are left pending").
func (s *Store) ReadApprovals(ctx context.Context, runID string) ([]ports.ApprovalDecision, error) {
	data, err := os.ReadFile(s.approvalsPath(runID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var decisions []ports.ApprovalDecision
	if err := json.Unmarshal(data, &decisions); err != nil {
		return nil, err
	}
	return decisions, nil
}

// WriteApprovals persists the full set of approval decisions for a run.
func (s *Store) WriteApprovals(ctx context.Context, runID string, decisions []ports.ApprovalDecision) error {
	if err := os.MkdirAll(filepath.Dir(s.approvalsPath(runID)), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(decisions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.approvalsPath(runID), data, 0o644)
}
