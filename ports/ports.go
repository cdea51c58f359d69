// Package ports declares the collaborator interfaces the core pipeline
// depends on but does not implement itself: file I/O, approval decisions,
// and audit persistence (spec.md §6, "External interfaces").
package ports

import (
	"context"

	"chillgrid/domain/run"
	"chillgrid/domain/signal"
)

// RawRow is one (timestamp, value) pair as presented by a FileReader,
// before any decoding or unit conversion.
type RawRow struct {
	Time  signal.SampleTime
	Value float64
}

// SourceFile describes one input artifact a FileReader can iterate.
type SourceFile struct {
	Name string
	Size int64
}

// FileReader supplies raw (filename, rows) pairs from an input directory.
// Implementations must present rows in original file order and must not
// pre-interpolate or reorder them (spec.md §6).
type FileReader interface {
	ListFiles(ctx context.Context, dir string) ([]SourceFile, error)
	ReadRows(ctx context.Context, dir string, file SourceFile) ([]RawRow, string, error) // rows, reported unit header, error
}

// ApprovalDecision is one entry of the exclusion-window sidecar file.
type ApprovalDecision struct {
	WindowID string `json:"window_id"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// ApprovalStore reads pending exclusion-window approvals and persists
// newly proposed candidates, per spec.md §6's "Approval interface".
type ApprovalStore interface {
	ReadApprovals(ctx context.Context, runID string) ([]ApprovalDecision, error)
	WriteCandidates(ctx context.Context, runID string, windows []signal.ExclusionWindow) error
}

// AuditSink persists a run manifest across runs, for historical review.
// Optional: a nil AuditSink is valid and simply means no cross-run history
// is kept (spec.md §9, audit is never required for a run to complete).
type AuditSink interface {
	RecordRun(ctx context.Context, manifest *run.Manifest) error
}

// ReportRenderer renders a human-readable per-run summary from a finished
// manifest plus its stage metrics (spec.md §6, "report rendering").
type ReportRenderer interface {
	Render(ctx context.Context, manifest *run.Manifest, sections map[string]string) ([]byte, error)
}

// ProgressSink receives stage-boundary progress events for a running
// pipeline, used to drive the status API's SSE stream.
type ProgressSink interface {
	StageStarted(stageName string)
	StageFinished(stageName string, success bool, confidence float64)
	Halted(stageName string, reason string)
}

// NoopProgressSink discards all events; the zero value is ready to use.
type NoopProgressSink struct{}

func (NoopProgressSink) StageStarted(string)                      {}
func (NoopProgressSink) StageFinished(string, bool, float64)      {}
func (NoopProgressSink) Halted(string, string)                    {}
