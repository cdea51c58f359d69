package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chillgrid/domain/core"
)

func TestRangeChecks_InBandAndOutOfBand(t *testing.T) {
	assert.True(t, CheckCHWST(7).InRange)
	assert.False(t, CheckCHWST(25).InRange)

	assert.True(t, CheckCHWRT(12).InRange)
	assert.False(t, CheckCHWRT(2).InRange)

	assert.True(t, CheckCDWRT(30).InRange)
	assert.False(t, CheckCDWRT(50).InRange)
}

func TestCheckFlow_NegativeIsHardFail(t *testing.T) {
	r := CheckFlow(-0.1)
	assert.True(t, r.HardFail)
	require.Error(t, r.Err)
	assert.ErrorIs(t, r.Err, core.ErrNegativeFlow)

	ok := CheckFlow(0.05)
	assert.True(t, ok.InRange)
	assert.False(t, ok.HardFail)
}

func TestCheckPower_NegativeIsHardFail(t *testing.T) {
	r := CheckPower(-1)
	assert.True(t, r.HardFail)
	assert.ErrorIs(t, r.Err, core.ErrNegativePower)
}

func TestRelationalViolationRate(t *testing.T) {
	assert.Equal(t, 0.0, RelationalViolationRate(0, 0))
	assert.InDelta(t, 0.05, RelationalViolationRate(5, 100), 1e-9)
}

func TestPhysicsConfidence_Bounds(t *testing.T) {
	assert.Equal(t, 1.0, PhysicsConfidence(0))
	assert.InDelta(t, 0.9, PhysicsConfidence(1.0), 1e-9)
	assert.Equal(t, 0.0, PhysicsConfidence(20))
}

func TestAggregateHalt(t *testing.T) {
	assert.True(t, AggregateHalt(0.02, false))
	assert.False(t, AggregateHalt(0.02, true))
	assert.False(t, AggregateHalt(0.005, false))
}
