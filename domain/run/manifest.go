// Package run holds the bookkeeping record for one pipeline execution: the
// options it was invoked with, the per-stage timings and confidences it
// accumulated, and — if the run halted — why.
package run

import (
	"chillgrid/domain/core"
	"chillgrid/domain/signal"
	"chillgrid/domain/stage"
)

// Options configures a single pipeline invocation (spec.md §9 config surface).
type Options struct {
	InputDir           string
	OutputDir          string
	EquipmentProfile   signal.EquipmentProfile
	NameplateKW        float64
	NominalStepSeconds float64
	TolerateReversal   bool
}

// StageTiming records when one stage ran and how it went, for the manifest.
type StageTiming struct {
	Stage      stage.StageName `json:"stage"`
	DurationMs int64           `json:"duration_ms"`
	Confidence float64         `json:"confidence"`
	Halted     bool            `json:"halted"`
}

// HaltRecord captures why a run stopped early (spec.md §7 HALT semantics).
type HaltRecord struct {
	Stage   stage.StageName `json:"stage"`
	Reason  string          `json:"reason"`
	AtTime  core.Timestamp  `json:"at_time"`
}

// Manifest is the persisted record of one pipeline run: what it consumed,
// how it was configured, and what happened — analogous in spirit to a
// run fingerprint, but scoped to a telemetry-assimilation run rather than
// a hypothesis-evaluation run.
type Manifest struct {
	ID              core.RunID            `json:"id"`
	InputFingerprint core.InputFingerprint `json:"input_fingerprint"`
	Options         Options               `json:"options"`
	StageTimings    []StageTiming         `json:"stage_timings"`
	Halt            *HaltRecord           `json:"halt,omitempty"`
	StartedAt       core.Timestamp        `json:"started_at"`
	FinishedAt      core.Timestamp        `json:"finished_at"`
	FinalConfidence float64               `json:"final_confidence"`
}

// New creates a fresh manifest for a run about to start.
func New(opts Options, fingerprint core.InputFingerprint) *Manifest {
	return &Manifest{
		ID:               core.NewRunID(),
		InputFingerprint: fingerprint,
		Options:          opts,
		StartedAt:        core.Now(),
		FinalConfidence:  1.0,
	}
}

// RecordStage appends a stage timing and folds its confidence into the
// run's weakest-link final confidence.
func (m *Manifest) RecordStage(t StageTiming) {
	m.StageTimings = append(m.StageTimings, t)
	if t.Confidence < m.FinalConfidence {
		m.FinalConfidence = t.Confidence
	}
}

// RecordHalt marks the run as halted and stamps the finish time.
func (m *Manifest) RecordHalt(stageName stage.StageName, reason string) {
	m.Halt = &HaltRecord{Stage: stageName, Reason: reason, AtTime: core.Now()}
	m.FinishedAt = core.Now()
}

// Finish stamps the completion time for a run that did not halt.
func (m *Manifest) Finish() {
	m.FinishedAt = core.Now()
}

// Halted reports whether the run stopped early.
func (m *Manifest) Halted() bool { return m.Halt != nil }
