package gaps

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chillgrid/domain/signal"
)

func TestClassifyInterval_Thresholds(t *testing.T) {
	const step = 300.0
	assert.Equal(t, signal.GapNormal, ClassifyInterval(300, step))
	assert.Equal(t, signal.GapNormal, ClassifyInterval(450, step))
	assert.Equal(t, signal.GapMinor, ClassifyInterval(451, step))
	assert.Equal(t, signal.GapMinor, ClassifyInterval(1200, step))
	assert.Equal(t, signal.GapMajor, ClassifyInterval(1201, step))
}

func TestClassifySemantic_NormalIsNotApplicable(t *testing.T) {
	assert.Equal(t, signal.SemanticNotApplicable, ClassifySemantic(signal.GapNormal, 10, 12, false))
	assert.Equal(t, signal.SemanticNotApplicable, ClassifySemantic(signal.GapNormal, 10, 999, true))
}

func TestClassifySemantic_PhysicsViolationForcesAnomaly(t *testing.T) {
	got := ClassifySemantic(signal.GapMinor, 10, 10.01, true)
	assert.Equal(t, signal.SemanticSensorAnomaly, got)
}

func TestClassifySemantic_LargeJumpIsAnomaly(t *testing.T) {
	got := ClassifySemantic(signal.GapMajor, 10, 20, false)
	assert.Equal(t, signal.SemanticSensorAnomaly, got)
}

func TestClassifySemantic_ConstantVsMinorChange(t *testing.T) {
	assert.Equal(t, signal.SemanticCovConstant, ClassifySemantic(signal.GapMinor, 10.0, 10.001, false))
	assert.Equal(t, signal.SemanticCovMinor, ClassifySemantic(signal.GapMinor, 10.0, 10.1, false))
}

func TestChannelPenalty_SumsGapPenalties(t *testing.T) {
	intervals := []signal.Interval{
		{Semantic: signal.SemanticCovMinor},
		{Semantic: signal.SemanticSensorAnomaly},
		{Semantic: signal.SemanticNotApplicable},
	}
	got := ChannelPenalty(intervals)
	assert.InDelta(t, 0.07, got, 1e-9)
}

func TestStagePenalty_Averages(t *testing.T) {
	got := StagePenalty([]float64{0.1, 0.3})
	assert.InDelta(t, 0.2, got, 1e-9)
	assert.Equal(t, 0.0, StagePenalty(nil))
}

func TestFindExclusionCandidates_RequiresOverlapAndDuration(t *testing.T) {
	longMajor := signal.Interval{
		StartTime: 0, EndTime: 9 * 3600, DurationS: 9 * 3600, Class: signal.GapMajor,
	}
	shortMajor := signal.Interval{
		StartTime: 3600, EndTime: 2 * 3600, DurationS: 3600, Class: signal.GapMajor,
	}
	channels := []ChannelMajorGaps{
		{Channel: signal.ChannelCHWST, Intervals: []signal.Interval{longMajor}},
		{Channel: signal.ChannelCHWRT, Intervals: []signal.Interval{shortMajor}},
	}
	out := FindExclusionCandidates(channels)
	if assert.Len(t, out, 1) {
		assert.GreaterOrEqual(t, out[0].DurationS, minExclusionHours*3600)
		assert.ElementsMatch(t, []string{"CHWRT", "CHWST"}, out[0].AffectedChannels)
	}
}

func TestFindExclusionCandidates_SingleChannelNeverQualifies(t *testing.T) {
	longMajor := signal.Interval{StartTime: 0, EndTime: 9 * 3600, DurationS: 9 * 3600, Class: signal.GapMajor}
	channels := []ChannelMajorGaps{
		{Channel: signal.ChannelCHWST, Intervals: []signal.Interval{longMajor}},
	}
	out := FindExclusionCandidates(channels)
	assert.Empty(t, out)
}

func TestFindExclusionCandidates_StableIDAcrossRuns(t *testing.T) {
	longMajor := signal.Interval{StartTime: 0, EndTime: 9 * 3600, DurationS: 9 * 3600, Class: signal.GapMajor}
	channels := []ChannelMajorGaps{
		{Channel: signal.ChannelCHWST, Intervals: []signal.Interval{longMajor}},
		{Channel: signal.ChannelFlow, Intervals: []signal.Interval{longMajor}},
	}
	first := FindExclusionCandidates(channels)
	second := FindExclusionCandidates(channels)
	if assert.Len(t, first, 1) && assert.Len(t, second, 1) {
		assert.Equal(t, first[0].ID, second[0].ID)
	}
}

func TestBuildIntervals_SkipsShorterThanTwoSamples(t *testing.T) {
	assert.Nil(t, BuildIntervals(nil, nil, 300, nil))
	assert.Nil(t, BuildIntervals([]signal.SampleTime{0}, []float64{1}, 300, nil))
}
