package seismic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStressReduction_BranchBoundary(t *testing.T) {
	// 9.15 m belongs to the shallow branch
	assert.InDelta(t, 0.9300025, StressReduction(9.15), 1e-12)
	assert.InDelta(t, 0.929428, StressReduction(9.16), 1e-12)
	assert.InDelta(t, 0.907, StressReduction(10), 1e-12)
}

func TestStressReduction_Unclamped(t *testing.T) {
	assert.Less(t, StressReduction(50), 0.0)
}

func TestMagnitudeScaling(t *testing.T) {
	assert.InDelta(t, 1.000149, MagnitudeScaling(7.5), 1e-6)
	// raw value 0.5084 is below the floor
	assert.Equal(t, MSFMin, MagnitudeScaling(10))
	assert.Greater(t, MagnitudeScaling(5.5), MagnitudeScaling(7.5))
}

func TestOverburdenCorrection(t *testing.T) {
	assert.InDelta(t, 1.0001183, OverburdenCorrection(100), 1e-6)
	assert.InDelta(t, 1.0069842, OverburdenCorrection(1), 1e-6)
	assert.InDelta(t, 1.0066706, OverburdenCorrection(10), 1e-6)
	// no lower bound
	assert.Less(t, OverburdenCorrection(2000), 0.9)
}

func TestCapKSigma(t *testing.T) {
	assert.Equal(t, KSigmaMax, capKSigma(1.25))
	assert.Equal(t, 1.05, capKSigma(1.05))
	assert.Equal(t, -0.3, capKSigma(-0.3))
}

func TestCRR75(t *testing.T) {
	assert.InDelta(t, 0.156119, CRR75(15), 1e-6)
	assert.Equal(t, DenseCRR, CRR75(37))
	assert.Equal(t, DenseCRR, CRR75(45))

	below := CRR75(36.999)
	assert.InDelta(t, 1.749206, below, 1e-5)
	assert.NotEqual(t, DenseCRR, below)
}

func TestMagnitudeSweep(t *testing.T) {
	s, err := MagnitudeSweep(0.3, 5.5, 8.5, 0.5)
	require.NoError(t, err)
	require.Len(t, s, 7)
	assert.Equal(t, 5.5, s[0].Magnitude)
	assert.InDelta(t, 8.5, s[6].Magnitude, 1e-12)
	assert.Equal(t, 0.3, s[3].PGA)
	assert.Equal(t, "4", s[3].ID)

	_, err = MagnitudeSweep(0.3, 5.5, 8.5, 0)
	assert.Error(t, err)
	_, err = MagnitudeSweep(0.3, 8.5, 5.5, 0.5)
	assert.Error(t, err)
}

func TestMagnitudeSweep_Bounded(t *testing.T) {
	_, err := MagnitudeSweep(0.3, 5.5, 8.5, 1e-9)
	assert.ErrorContains(t, err, "exceeds")

	_, err = MagnitudeSweep(0.3, 5.5, math.Inf(1), 0.5)
	assert.Error(t, err)

	s, err := MagnitudeSweep(0.3, 0, 9.99, 0.01)
	require.NoError(t, err)
	assert.Len(t, s, MaxSweepScenarios)

	_, err = MagnitudeSweep(0.3, 0, 10, 0.01)
	assert.Error(t, err)
}

func TestGoverning(t *testing.T) {
	scenarios := DefaultSweep(0.4)
	v, g, ok := Governing(scenarios, func(s Scenario) (float64, bool) {
		if s.Magnitude > 8 {
			return 0, false
		}
		return math.Abs(s.Magnitude - 7), true
	})
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, 7.0, g.Magnitude)

	_, _, ok = Governing(scenarios, func(Scenario) (float64, bool) { return 0, false })
	assert.False(t, ok)
}
