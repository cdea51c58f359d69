package units

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chillgrid/domain/signal"
)

func TestDecideTemperature_Celsius(t *testing.T) {
	d := DecideTemperature(12.0)
	assert.Equal(t, signal.UnitTemperatureC, d.Category)
	assert.Equal(t, 1.0, d.ConversionFactor)
	assert.Equal(t, 0.0, d.Offset)
}

func TestDecideTemperature_Fahrenheit(t *testing.T) {
	d := DecideTemperature(70.0)
	assert.Equal(t, signal.UnitTemperatureC, d.Category)
	// 70F -> (70-32)*5/9 = 21.11C
	converted := 70.0*d.ConversionFactor + d.Offset
	assert.InDelta(t, 21.11, converted, 0.01)
}

func TestDecideTemperature_Kelvin(t *testing.T) {
	d := DecideTemperature(300.0)
	converted := 300.0*d.ConversionFactor + d.Offset
	assert.InDelta(t, 26.85, converted, 0.01)
}

func TestDecideTemperature_Unknown(t *testing.T) {
	d := DecideTemperature(-40.0)
	assert.Equal(t, signal.UnitUnknown, d.Category)
}

func TestDecideFlow_Tiers(t *testing.T) {
	assert.Equal(t, signal.UnitFlowM3s, DecideFlow(0.5).Category)
	assert.Equal(t, signal.UnitFlowM3s, DecideFlow(100).Category)
	assert.Equal(t, signal.UnitUnknown, DecideFlow(5).Category)
}

func TestDecidePower_NameplateAnchorPrefersHeaderSource(t *testing.T) {
	d := DecidePower(0.5, 800)
	assert.Equal(t, signal.UnitSourceHeader, d.Source)
	assert.Equal(t, 1000.0, d.ConversionFactor)
}

func TestDecidePower_NoAnchorFallsBackToInferred(t *testing.T) {
	d := DecidePower(500, 0)
	assert.Equal(t, signal.UnitSourceInferred, d.Source)
}

func TestPenalty_AccumulatesIndependently(t *testing.T) {
	unknownSource := signal.UnitDecision{Source: signal.UnitSourceUnknown, ConversionFactor: 1}
	assert.InDelta(t, 0.30, Penalty(unknownSource, false), 1e-9)

	scaled := signal.UnitDecision{Source: signal.UnitSourceInferred, Category: signal.UnitFlowM3s, ConversionFactor: 2}
	assert.InDelta(t, 0.02, Penalty(scaled, false), 1e-9)

	outOfRange := signal.UnitDecision{Source: signal.UnitSourceInferred, Category: signal.UnitFlowM3s, ConversionFactor: 1}
	assert.InDelta(t, 0.05, Penalty(outOfRange, true), 1e-9)
}

func TestConfidence_ClampsToZero(t *testing.T) {
	worst := signal.UnitDecision{Source: signal.UnitSourceUnknown, ConversionFactor: 2, Offset: 1}
	c := Confidence(worst, true)
	assert.GreaterOrEqual(t, float64(c), 0.0)
	assert.Less(t, float64(c), 1.0)
}
