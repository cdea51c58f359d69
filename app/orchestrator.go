// Package app orchestrates the five-stage pipeline: it owns stage handoff,
// the errgroup-based per-channel fan-out the core permits (spec.md §5),
// HALT propagation, and the exclusion-window reconciliation boundary
// between Stage 2's proposals and Stage 3's grid construction.
package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"chillgrid/adapters/classify"
	"chillgrid/adapters/confidence"
	"chillgrid/adapters/decode"
	"chillgrid/adapters/derive"
	"chillgrid/adapters/gaps"
	"chillgrid/adapters/grid"
	"chillgrid/adapters/physics"
	"chillgrid/adapters/state"
	"chillgrid/adapters/units"
	"chillgrid/domain/core"
	domainrun "chillgrid/domain/run"
	"chillgrid/domain/signal"
	"chillgrid/domain/stage"
	"chillgrid/internal/errors"
	"chillgrid/ports"
)

// Orchestrator runs the pipeline over one run's inputs and collaborators.
type Orchestrator struct {
	reader   ports.FileReader
	approval ports.ApprovalStore
	audit    ports.AuditSink // may be nil
	progress ports.ProgressSink
}

// New builds an Orchestrator. audit may be nil; progress defaults to a
// no-op sink when nil.
func New(reader ports.FileReader, approval ports.ApprovalStore, audit ports.AuditSink, progress ports.ProgressSink) *Orchestrator {
	if progress == nil {
		progress = ports.NoopProgressSink{}
	}
	return &Orchestrator{reader: reader, approval: approval, audit: audit, progress: progress}
}

// Result is the full output of one pipeline run.
type Result struct {
	Manifest       *domainrun.Manifest
	Classification classify.Classification
	ChannelSignals map[signal.ChannelKind]*channelState
	GridTicks      []signal.SampleTime
	Rows           []signal.GridRow
	Derived        []signal.DerivedQuantities
	Fouling        []signal.FoulingIndicator
	Hunting        []signal.HuntingEvent
	Halted         bool
}

// channelState carries one channel's per-stage annotations through the run.
type channelState struct {
	Sig               *signal.Signal
	Stats             signal.RawStats
	Encoding          signal.EncodingDecision
	Unit              signal.UnitDecision
	Intervals         []signal.Interval
	UnitConf          signal.Confidence
	PhysicsConf       signal.Confidence
	PhysicsViolations []bool // per-sample range-check result, aligned to Sig's samples
}

// Run executes the full pipeline. It returns a non-nil error only for
// programmer errors (core.IsProgrammerError) or unexpected internal
// failures; a HALT condition is reflected in Result.Halted and
// Result.Manifest.Halt, not as a returned error, so partial outputs can
// still be inspected by the caller (spec.md §6, exit code 1 vs 2).
func (o *Orchestrator) Run(ctx context.Context, opts domainrun.Options) (*Result, error) {
	files, err := o.reader.ListFiles(ctx, opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("listing input files: %w", err)
	}
	names := make([]string, len(files))
	sizes := make(map[string]int64, len(files))
	for i, f := range files {
		names[i] = f.Name
		sizes[f.Name] = f.Size
	}
	fingerprint := core.ComputeInputFingerprint(names, sizes)
	manifest := domainrun.New(opts, fingerprint)
	result := &Result{Manifest: manifest, ChannelSignals: make(map[signal.ChannelKind]*channelState)}

	// Stage 0.
	o.progress.StageStarted(string(stage.StageS0Classify))
	classification := classify.ClassifyAll(names)
	result.Classification = classification

	channelFiles := make(map[signal.ChannelKind]ports.SourceFile)
	for _, f := range files {
		ch := classification.FeedMap[f.Name]
		if ch == signal.ChannelOther {
			continue
		}
		if _, exists := channelFiles[ch]; !exists {
			channelFiles[ch] = f
		}
	}
	for _, mandatory := range signal.MandatoryChannels {
		if _, ok := channelFiles[mandatory]; !ok {
			manifest.RecordHalt(stage.StageS0Classify, fmt.Sprintf("missing mandatory channel %s", mandatory))
			o.progress.Halted(string(stage.StageS0Classify), manifest.Halt.Reason)
			result.Halted = true
			return result, nil
		}
	}
	manifest.RecordStage(domainrun.StageTiming{Stage: stage.StageS0Classify, Confidence: 1.0})
	o.progress.StageFinished(string(stage.StageS0Classify), true, 1.0)

	// Ingest + Stage 1a/1b, per channel in parallel.
	o.progress.StageStarted(string(stage.StageS1Decode))
	g, gctx := errgroup.WithContext(ctx)
	var channelsMu sync.Mutex
	for ch, file := range channelFiles {
		ch, file := ch, file
		g.Go(func() error {
			cs, err := o.ingestAndVerifyChannel(gctx, opts, ch, file)
			if err != nil {
				return err
			}
			channelsMu.Lock()
			result.ChannelSignals[ch] = cs
			channelsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if core.IsProgrammerError(err) {
			return nil, errors.ProgrammerError(err)
		}
		if core.IsHalt(err) {
			manifest.RecordHalt(stage.StageS1Decode, err.Error())
			o.progress.Halted(string(stage.StageS1Decode), err.Error())
			result.Halted = true
			return result, nil
		}
		return nil, fmt.Errorf("stage 1 ingestion: %w", err)
	}

	stage1Conf := minUnitPhysicsConfidence(result.ChannelSignals)
	manifest.RecordStage(domainrun.StageTiming{Stage: stage.StageS1Units, Confidence: float64(stage1Conf)})
	o.progress.StageFinished(string(stage.StageS1Units), true, float64(stage1Conf))

	// Stage 2 — gap detection on raw, pre-synchronisation timestamps.
	o.progress.StageStarted(string(stage.StageS2GapDetect))
	var channelPenalties []float64
	var majorGaps []gaps.ChannelMajorGaps
	nominalStep := opts.NominalStepSeconds
	if nominalStep <= 0 {
		nominalStep = 900
	}
	for ch, cs := range result.ChannelSignals {
		intervals := gaps.BuildIntervals(cs.Sig.Times(), cs.Sig.EffectiveValues(), nominalStep, cs.PhysicsViolations)
		cs.Intervals = intervals
		channelPenalties = append(channelPenalties, gaps.ChannelPenalty(intervals))
		majorGaps = append(majorGaps, gaps.ChannelMajorGaps{Channel: ch, Intervals: intervals})
	}
	stage2Penalty := gaps.StagePenalty(channelPenalties)
	stage2Conf := confidence.Propagate(stage1Conf, stage2Penalty)
	manifest.RecordStage(domainrun.StageTiming{Stage: stage.StageS2GapDetect, Confidence: float64(stage2Conf)})
	o.progress.StageFinished(string(stage.StageS2GapDetect), true, float64(stage2Conf))

	candidates := gaps.FindExclusionCandidates(majorGaps)
	runIDStr := string(manifest.ID)
	if err := o.approval.WriteCandidates(ctx, runIDStr, candidates); err != nil {
		return nil, fmt.Errorf("writing exclusion candidates: %w", err)
	}
	decisions, err := o.approval.ReadApprovals(ctx, runIDStr)
	if err != nil {
		return nil, fmt.Errorf("reading exclusion approvals: %w", err)
	}
	approvedByID := make(map[string]bool, len(decisions))
	for _, d := range decisions {
		if d.Approved {
			approvedByID[d.WindowID] = true
		}
	}
	var approvedWindows []signal.ExclusionWindow
	for _, c := range candidates {
		if approvedByID[c.ID] {
			c.Approved = true
			approvedWindows = append(approvedWindows, c)
		}
	}

	// Stage 3 — synchronise to a uniform grid.
	o.progress.StageStarted(string(stage.StageS3Synchronize))
	startUnix, endUnix := timeSpan(result.ChannelSignals)
	gridTicks := grid.BuildGrid(startUnix, endUnix, nominalStep)
	result.GridTicks = gridTicks

	alignments := make(map[signal.ChannelKind][]signal.ChannelAlignment, len(result.ChannelSignals))
	var alignMu sync.Mutex
	g2, gctx2 := errgroup.WithContext(ctx)
	for ch, cs := range result.ChannelSignals {
		ch, cs := ch, cs
		g2.Go(func() error {
			select {
			case <-gctx2.Done():
				return gctx2.Err()
			default:
			}
			a := grid.Align(gridTicks, cs.Sig.Samples)
			alignMu.Lock()
			alignments[ch] = a
			alignMu.Unlock()
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		return nil, fmt.Errorf("stage 3 alignment: %w", err)
	}

	rows, validCount := buildRows(gridTicks, alignments, result.ChannelSignals, approvedWindows)
	applyOperationalState(rows, opts.EquipmentProfile)
	result.Rows = rows

	// Stage 1d relational checks need row-aligned, state-classified samples,
	// so they run here rather than inside ingestAndVerifyChannel (spec.md
	// §4.2.4's aggregate-violation HALT, salvageable by a state-stratified
	// sensor-reversal diagnosis).
	relViolationRate, reversalDiagnosis := checkRelationalPhysics(rows)
	if physics.AggregateHalt(relViolationRate, reversalDiagnosis.Detected) {
		manifest.RecordHalt(stage.StageS1Physics, fmt.Sprintf("relational physics violation rate %.1f%% with no sensor-reversal salvage", relViolationRate*100))
		o.progress.Halted(string(stage.StageS1Physics), manifest.Halt.Reason)
		result.Halted = true
		return result, nil
	}

	v := 0.0
	if len(rows) > 0 {
		v = float64(validCount) / float64(len(rows))
	}
	_, coveragePenalty := grid.CoverageTier(v)
	stage3Conf := confidence.Propagate(stage2Conf, coveragePenalty)

	if v < 0.50 {
		manifest.RecordHalt(stage.StageS3Synchronize, fmt.Sprintf("valid coverage %.1f%% below 50%% minimum", v*100))
		o.progress.Halted(string(stage.StageS3Synchronize), manifest.Halt.Reason)
		result.Halted = true
		return result, nil
	}
	if validCount == 0 {
		manifest.RecordHalt(stage.StageS3Synchronize, "all grid rows excluded")
		o.progress.Halted(string(stage.StageS3Synchronize), manifest.Halt.Reason)
		result.Halted = true
		return result, nil
	}
	manifest.RecordStage(domainrun.StageTiming{Stage: stage.StageS3Synchronize, Confidence: float64(stage3Conf)})
	o.progress.StageFinished(string(stage.StageS3Synchronize), true, float64(stage3Conf))

	// Stage 4 — derived quantities, computed row by row, never halts.
	o.progress.StageStarted(string(stage.StageS4Derive))
	nameplate := opts.NameplateKW
	derived := deriveAll(rows, nameplate)
	result.Derived = derived
	result.Fouling = derive.FoulingBaselines(derived)
	result.Hunting = derive.HuntingEvents(derived, func(d signal.DerivedQuantities) float64 { return d.CHWST })
	manifest.RecordStage(domainrun.StageTiming{Stage: stage.StageS4Derive, Confidence: float64(stage3Conf)})
	o.progress.StageFinished(string(stage.StageS4Derive), true, float64(stage3Conf))

	manifest.Finish()
	if o.audit != nil {
		if err := o.audit.RecordRun(ctx, manifest); err != nil {
			return nil, fmt.Errorf("recording run audit: %w", err)
		}
	}
	return result, nil
}

func (o *Orchestrator) ingestAndVerifyChannel(ctx context.Context, opts domainrun.Options, ch signal.ChannelKind, file ports.SourceFile) (*channelState, error) {
	rawRows, reportedUnit, err := o.reader.ReadRows(ctx, opts.InputDir, file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file.Name, err)
	}

	samples := make([]signal.Sample, len(rawRows))
	for i, r := range rawRows {
		samples[i] = signal.Sample{Time: r.Time, Value: r.Value}
	}
	sig := &signal.Signal{
		ID: core.NewSignalID(), Channel: ch, ReportedUnit: reportedUnit, SourceFile: file.Name, Samples: samples,
	}
	sig.MergeDuplicates()

	if !sig.CheckMonotonic() {
		if opts.TolerateReversal {
			sort.Slice(sig.Samples, func(i, j int) bool { return sig.Samples[i].Time < sig.Samples[j].Time })
		} else {
			return nil, core.ErrTimestampReversal
		}
	}

	raw := sig.RawValues()
	stats, decision, _, err := decode.DecodeSignal(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ch, err)
	}

	var unitDecision signal.UnitDecision
	switch ch {
	case signal.ChannelCHWST, signal.ChannelCHWRT, signal.ChannelCDWRT:
		unitDecision = units.DecideTemperature(stats.Mean)
	case signal.ChannelFlow:
		unitDecision = units.DecideFlow(stats.Max)
	case signal.ChannelPower:
		unitDecision = units.DecidePower(stats.Max, opts.NameplateKW)
	default:
		unitDecision = signal.UnitDecision{Category: signal.UnitDimensionless, ConversionFactor: 1, Confidence: 1.0}
	}

	converted := make([]float64, len(raw))
	for i, v := range raw {
		converted[i] = unitDecision.Convert(v)
	}
	sig.ConvertedValue = converted
	sig.CanonicalUnit = unitDecision.Category

	if ch == signal.ChannelFlow {
		for _, v := range converted {
			if v < 0 {
				return nil, core.ErrNegativeFlow
			}
		}
	}
	if ch == signal.ChannelPower {
		for _, v := range converted {
			if v < 0 {
				return nil, core.ErrNegativePower
			}
		}
	}

	violations := channelOutOfRangeFlags(ch, converted)
	violationFrac := violationFraction(violations)
	unitConf := units.Confidence(unitDecision, violationFrac > 0)
	physicsConf := signal.Confidence(physics.PhysicsConfidence(violationFrac))

	return &channelState{
		Sig: sig, Stats: stats, Encoding: decision, Unit: unitDecision,
		UnitConf: unitConf, PhysicsConf: physicsConf, PhysicsViolations: violations,
	}, nil
}

// channelOutOfRangeFlags applies Stage 1d's per-channel range check to every
// sample, returning a per-sample violation flag aligned to values. Channels
// with no range check (Flow, Power, Other) report no violations.
func channelOutOfRangeFlags(ch signal.ChannelKind, values []float64) []bool {
	var check func(float64) physics.RangeResult
	switch ch {
	case signal.ChannelCHWST:
		check = physics.CheckCHWST
	case signal.ChannelCHWRT:
		check = physics.CheckCHWRT
	case signal.ChannelCDWRT:
		check = physics.CheckCDWRT
	default:
		return make([]bool, len(values))
	}
	flags := make([]bool, len(values))
	for i, v := range values {
		flags[i] = !check(v).InRange
	}
	return flags
}

func violationFraction(flags []bool) float64 {
	if len(flags) == 0 {
		return 0
	}
	violations := 0
	for _, v := range flags {
		if v {
			violations++
		}
	}
	return float64(violations) / float64(len(flags))
}

func minUnitPhysicsConfidence(channels map[signal.ChannelKind]*channelState) signal.Confidence {
	var confs []signal.Confidence
	for _, ch := range signal.MandatoryChannels {
		cs, ok := channels[ch]
		if !ok {
			confs = append(confs, 0)
			continue
		}
		confs = append(confs, confidence.ChannelConfidence(cs.UnitConf, cs.PhysicsConf))
	}
	return confidence.StageConfidence(confs...)
}

func timeSpan(channels map[signal.ChannelKind]*channelState) (start, end float64) {
	start, end = math.Inf(1), math.Inf(-1)
	for _, cs := range channels {
		times := cs.Sig.Times()
		if len(times) == 0 {
			continue
		}
		if float64(times[0]) < start {
			start = float64(times[0])
		}
		if float64(times[len(times)-1]) > end {
			end = float64(times[len(times)-1])
		}
	}
	if math.IsInf(start, 1) {
		return 0, 0
	}
	return start, end
}

func buildRows(ticks []signal.SampleTime, alignments map[signal.ChannelKind][]signal.ChannelAlignment, channels map[signal.ChannelKind]*channelState, approved []signal.ExclusionWindow) ([]signal.GridRow, int) {
	rows := make([]signal.GridRow, len(ticks))
	validCount := 0
	for i, t := range ticks {
		inWindow := false
		for _, w := range approved {
			if t >= w.Start && t <= w.End {
				inWindow = true
				break
			}
		}

		rowChannels := make(map[signal.ChannelKind]signal.ChannelAlignment, len(alignments))
		var mandatoryInputs []grid.RowChannelInput
		for _, ch := range signal.MandatoryChannels {
			a := alignments[ch][i]
			rowChannels[ch] = a
			semantic := signal.SemanticNotApplicable
			if cs, ok := channels[ch]; ok && a.SourceIndex >= 0 && a.SourceIndex < len(cs.Intervals) {
				semantic = cs.Intervals[a.SourceIndex].Semantic
			}
			mandatoryInputs = append(mandatoryInputs, grid.RowChannelInput{Channel: ch, Alignment: a, SourceSemantic: semantic})
		}
		for ch, al := range alignments {
			if ch.IsMandatory() {
				continue
			}
			rowChannels[ch] = al[i]
		}

		classification, conf := grid.ClassifyRow(inWindow, mandatoryInputs)
		if classification == signal.RowValid {
			validCount++
		}
		rows[i] = signal.GridRow{Time: t, Channels: rowChannels, Classification: classification, Confidence: conf}
	}
	return rows, validCount
}

// applyOperationalState runs Stage 1c over the synchronised grid: it needs
// row-aligned CHWST/CHWRT/Flow, which only exist once Stage 3 has run, so
// unlike the S0-S2 stages it operates on grid rows rather than raw signals.
func applyOperationalState(rows []signal.GridRow, profile signal.EquipmentProfile) {
	inputs := make([]state.Row, len(rows))
	for i, row := range rows {
		chwst := row.Channels[signal.ChannelCHWST]
		chwrt := row.Channels[signal.ChannelCHWRT]
		flow := row.Channels[signal.ChannelFlow]
		power := row.Channels[signal.ChannelPower]
		loadPct := 0.0
		if load, ok := row.Channels[signal.ChannelLoad]; ok {
			loadPct = load.Value
		} else {
			loadPct = power.Value
		}
		inputs[i] = state.Row{LoadPct: loadPct, Flow: flow.Value, DeltaT: chwrt.Value - chwst.Value}
	}
	states := state.ClassifyAll(inputs, profile)
	for i := range rows {
		rows[i].State = states[i]
	}
}

// checkRelationalPhysics evaluates the CHWRT>CHWST and CDWRT>CHWST relations
// over valid grid rows and re-evaluates a high CHWRT/CHWST violation rate
// split by operational state, since a state-stratified split (low violation
// rate while Active, high while Standby) indicates a sensor reversal rather
// than a genuine physics fault (spec.md §4.2.4).
func checkRelationalPhysics(rows []signal.GridRow) (violationRate float64, diagnosis state.ReversalDiagnosis) {
	var chwrtViol, cdwrtViol, total int
	var activeViol, activeTotal, standbyViol, standbyTotal int
	for _, row := range rows {
		if row.Classification != signal.RowValid {
			continue
		}
		chwst := row.Channels[signal.ChannelCHWST].Value
		chwrt := row.Channels[signal.ChannelCHWRT].Value
		cdwrt := row.Channels[signal.ChannelCDWRT].Value
		total++
		chwrtBad := chwrt <= chwst
		if chwrtBad {
			chwrtViol++
		}
		if cdwrt <= chwst {
			cdwrtViol++
		}
		switch row.State {
		case signal.StateActive:
			activeTotal++
			if chwrtBad {
				activeViol++
			}
		case signal.StateStandby:
			standbyTotal++
			if chwrtBad {
				standbyViol++
			}
		}
	}

	chwrtRate := physics.RelationalViolationRate(chwrtViol, total)
	activeRate := physics.RelationalViolationRate(activeViol, activeTotal)
	standbyRate := physics.RelationalViolationRate(standbyViol, standbyTotal)
	diagnosis = state.DiagnoseReversal(chwrtRate, activeRate, standbyRate)

	combined := physics.RelationalViolationRate(chwrtViol+cdwrtViol, total*2)
	return combined, diagnosis
}

func deriveAll(rows []signal.GridRow, nameplateKW float64) []signal.DerivedQuantities {
	out := make([]signal.DerivedQuantities, 0, len(rows))
	for _, row := range rows {
		if row.Classification != signal.RowValid {
			continue
		}
		chwst := row.Channels[signal.ChannelCHWST]
		chwrt := row.Channels[signal.ChannelCHWRT]
		cdwrt := row.Channels[signal.ChannelCDWRT]
		flow := row.Channels[signal.ChannelFlow]
		power := row.Channels[signal.ChannelPower]

		deltaT := derive.DeltaT(chwrt.Value, chwst.Value)
		lift := derive.Lift(cdwrt.Value, chwst.Value)
		q, qValid := derive.CoolingLoadKW(flow.Value, deltaT, true)
		qConf := derive.QConfidence(float64(row.Confidence), flow.Value <= 0, !qValid, deltaT)

		cop, copValid := derive.COP(q, power.Value, qValid)
		carnot, carnotValid := derive.CarnotCOP(chwst.Value, lift)
		norm, normValid := derive.NormalizedCOP(cop, carnot)
		copConf := derive.COPConfidence(qConf, 1.0, power.Value <= 0, !copValid, normValid && (norm < 0 || norm > 0.5))

		loadFraction := 0.0
		if nameplateKW > 0 {
			loadFraction = power.Value / nameplateKW
		}

		dq := signal.DerivedQuantities{
			Time: row.Time, CHWST: chwst.Value, DeltaT: deltaT, Lift: lift, LoadFraction: loadFraction,
			Confidence: signal.Confidence(math.Min(qConf, copConf)),
		}
		if qValid {
			dq.HeatRejectKW = q
		}
		if copValid {
			dq.COP = cop
		}
		if carnotValid {
			dq.CarnotCOP = carnot
		}
		if normValid {
			dq.NormalizedCOP = norm
		}
		out = append(out, dq)
	}
	return out
}
