package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorTuningDefaults(t *testing.T) {
	cfg := EmptySimulatorTuning()
	assert.Equal(t, 2, cfg.GetStaticDriftCount())
	assert.Equal(t, 1, cfg.GetTunnelCount())
	min, max := cfg.GetDriftDistanceRange()
	assert.Equal(t, 20.0, min)
	assert.Equal(t, 200.0, max)
	assert.Len(t, cfg.GetDriftDistribution(), 3)
}

func TestSimulatorTuningValidateRejectsBadDistribution(t *testing.T) {
	cfg := &SimulatorTuning{DriftDistribution: []DriftBand{{Ratio: 0.5, Min: 0, Max: 10}}}
	require.Error(t, cfg.Validate())
}

func TestSimulatorTuningValidateAcceptsCompleteDistribution(t *testing.T) {
	cfg := &SimulatorTuning{DriftDistribution: []DriftBand{
		{Ratio: 0.5, Min: 0, Max: 10},
		{Ratio: 0.5, Min: 10, Max: 20},
	}}
	require.NoError(t, cfg.Validate())
}
