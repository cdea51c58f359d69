package stage

import (
	"crypto/sha256"
	"encoding/json"
	"sort"

	"chillgrid/domain/core"
)

// StageName identifies one of the five pipeline stages.
type StageName string

// StageKind categorizes a stage by the kind of work it does.
type StageKind string

const (
	StageKindClassify  StageKind = "classify"  // file/channel classification
	StageKindVerify    StageKind = "verify"    // decode/unit/state/physics verification
	StageKindGapDetect StageKind = "gap_detect"
	StageKindSynchronize StageKind = "synchronize"
	StageKindDerive    StageKind = "derive"
)

// The five pipeline stages, in required execution order.
const (
	StageS0Classify    StageName = "s0_classify"
	StageS1Decode      StageName = "s1a_decode"
	StageS1Units       StageName = "s1b_units"
	StageS1State       StageName = "s1c_state"
	StageS1Physics     StageName = "s1d_physics"
	StageS2GapDetect   StageName = "s2_gap_detect"
	StageS3Synchronize StageName = "s3_synchronize"
	StageS4Derive      StageName = "s4_derive"
)

// DefaultStageOrder is the canonical stage ordering used by
// DefaultStagePlan and StagePlan.Validate (spec.md §2). The orchestrator's
// Run does not consult it and runs S1c/S1d after S3.
var DefaultStageOrder = []StageName{
	StageS0Classify,
	StageS1Decode, StageS1Units, StageS1State, StageS1Physics,
	StageS2GapDetect,
	StageS3Synchronize,
	StageS4Derive,
}

// StageSpec defines a single stage in the pipeline plan.
type StageSpec struct {
	Name   StageName              `json:"name"`
	Kind   StageKind              `json:"kind"`
	Config map[string]interface{} `json:"config"`
}

// StageResult represents the output of a stage execution. The
// orchestrator's Run does not build StageResults; it records each stage's
// confidence on the run manifest instead.
type StageResult struct {
	StageName StageName           `json:"stage_name"`
	Success   bool                `json:"success"`
	Halted    bool                `json:"halted"` // true if this stage issued a HALT (spec.md §7)
	Metrics   StageMetrics        `json:"metrics"`
	Artifacts []core.Artifact     `json:"artifacts,omitempty"`
	Audit     StageExecutionAudit `json:"audit"`
	Error     string              `json:"error,omitempty"`
	Duration  int64               `json:"duration_ms"`
}

// StageExecutionAudit captures the execution context and results of a stage.
type StageExecutionAudit struct {
	StageName        StageName      `json:"stage_name"`
	RunID            core.RunID     `json:"run_id"`
	ArtifactsWritten int            `json:"artifacts_written"`
	SkipsByReason    map[string]int `json:"skips_by_reason,omitempty"` // e.g. {"missing_mandatory": 1}
	Warnings         []string       `json:"warnings,omitempty"`
	ExecutedAt       core.Timestamp `json:"executed_at"`
}

// StageMetrics contains canonical metrics for a stage result. Fields are
// pointers so a stage only populates the metrics relevant to its kind.
type StageMetrics struct {
	ProcessedCount int   `json:"processed_count"`
	SuccessCount   int   `json:"success_count"`
	FailureCount   int   `json:"failure_count"`
	DurationMs     int64 `json:"duration_ms"`

	// Gap-detection / synchronization metrics.
	MinorGapCount *int     `json:"minor_gap_count,omitempty"`
	MajorGapCount *int     `json:"major_gap_count,omitempty"`
	ExcludedRows  *int     `json:"excluded_rows,omitempty"`
	CoverageFrac  *float64 `json:"coverage_frac,omitempty"`

	// Confidence / derivation metrics.
	MeanConfidence *float64 `json:"mean_confidence,omitempty"`
	MinConfidence  *float64 `json:"min_confidence,omitempty"`

	Custom map[string]interface{} `json:"custom,omitempty"`
}

// StagePlan represents an ordered list of stages with configuration.
type StagePlan struct {
	Stages []StageSpec `json:"stages"`
}

// NewStagePlan creates a new stage plan.
func NewStagePlan(stages []StageSpec) *StagePlan {
	return &StagePlan{Stages: stages}
}

// DefaultStagePlan builds the canonical S0-S4 plan with empty per-stage config.
func DefaultStagePlan() *StagePlan {
	kinds := map[StageName]StageKind{
		StageS0Classify:    StageKindClassify,
		StageS1Decode:      StageKindVerify,
		StageS1Units:       StageKindVerify,
		StageS1State:       StageKindVerify,
		StageS1Physics:     StageKindVerify,
		StageS2GapDetect:   StageKindGapDetect,
		StageS3Synchronize: StageKindSynchronize,
		StageS4Derive:      StageKindDerive,
	}
	specs := make([]StageSpec, 0, len(DefaultStageOrder))
	for _, name := range DefaultStageOrder {
		specs = append(specs, StageSpec{Name: name, Kind: kinds[name], Config: map[string]interface{}{}})
	}
	return NewStagePlan(specs)
}

// Hash computes a deterministic hash of the stage plan's stage set,
// independent of declared order — two plans with the same stages hash equal.
func (p *StagePlan) Hash() core.StageListHash {
	sortedStages := make([]StageSpec, len(p.Stages))
	copy(sortedStages, p.Stages)
	sort.Slice(sortedStages, func(i, j int) bool {
		return sortedStages[i].Name < sortedStages[j].Name
	})

	data, _ := json.Marshal(sortedStages)
	sum := sha256.Sum256(data)
	return core.NewStageListHash(sum[:])
}

// Validate checks that the stage plan is well-formed and follows the
// required S0->S1->S2->S3->S4 ordering (spec.md §2, strict sequencing).
func (p *StagePlan) Validate() error {
	if len(p.Stages) == 0 {
		return core.ErrEmptyStagePlan
	}

	seenNames := make(map[StageName]bool)
	position := make(map[StageName]int, len(DefaultStageOrder))
	for i, name := range DefaultStageOrder {
		position[name] = i
	}

	lastPos := -1
	for _, s := range p.Stages {
		if s.Name == "" {
			return core.NewValidationError("stage", "name cannot be empty")
		}
		if seenNames[s.Name] {
			return core.NewValidationError("stage", "duplicate stage name: "+string(s.Name))
		}
		seenNames[s.Name] = true

		pos, known := position[s.Name]
		if !known {
			return core.NewValidationError("stage", "unknown stage name: "+string(s.Name))
		}
		if pos < lastPos {
			return core.NewValidationError("stage_plan", "stage "+string(s.Name)+" violates required execution order")
		}
		lastPos = pos
	}

	return nil
}

// GetStagesByKind returns all stages of a specific kind.
func (p *StagePlan) GetStagesByKind(kind StageKind) []StageSpec {
	var result []StageSpec
	for _, s := range p.Stages {
		if s.Kind == kind {
			result = append(result, s)
		}
	}
	return result
}

// PipelineResult contains the results of executing a stage plan.
type PipelineResult struct {
	Plan    *StagePlan      `json:"plan"`
	Results []StageResult   `json:"results"`
	Overall PipelineSummary `json:"overall"`
}

// PipelineSummary provides high-level pipeline statistics.
type PipelineSummary struct {
	TotalStages    int   `json:"total_stages"`
	Successful     int   `json:"successful"`
	Failed         int   `json:"failed"`
	Halted         bool  `json:"halted"`
	TotalDuration  int64 `json:"total_duration_ms"`
	ArtifactsCount int   `json:"artifacts_count"`
}

// NewPipelineResult creates a new pipeline result.
func NewPipelineResult(plan *StagePlan) *PipelineResult {
	return &PipelineResult{
		Plan:    plan,
		Results: make([]StageResult, 0),
		Overall: PipelineSummary{},
	}
}

// AddResult adds a stage result and updates the running summary.
func (r *PipelineResult) AddResult(result StageResult) {
	r.Results = append(r.Results, result)
	r.Overall.TotalStages++

	if result.Success {
		r.Overall.Successful++
	} else {
		r.Overall.Failed++
	}
	if result.Halted {
		r.Overall.Halted = true
	}

	r.Overall.TotalDuration += result.Duration
	r.Overall.ArtifactsCount += len(result.Artifacts)
}

// Success returns true if all stages succeeded and none halted.
func (r *PipelineResult) Success() bool {
	return r.Overall.Failed == 0 && !r.Overall.Halted
}

// PipelineRequest specifies a pipeline execution.
type PipelineRequest struct {
	RunID      string      `json:"run_id"`
	InputDir   string      `json:"input_dir"`
	Stages     []StageSpec `json:"stages"`
}
