package drift

import (
	"time"

	"github.com/arcfix-nav/driftfilter/internal/config"
)

// Config is the detector's resolved tuning (spec.md §4.2 Configuration
// table), built from a config.DetectorTuning via NewConfig so callers never
// juggle nil pointers once the detector is constructed.
type Config struct {
	WindowSize              int
	ValidityPeriod          time.Duration
	MaxDriftSequence        int
	DriftMultiplier         float64
	LinearAngleThresholdDeg float64
	FloorRadiusMeters       float64
}

// NewConfig resolves a DetectorTuning (with its defaults applied) into a
// Config.
func NewConfig(t *config.DetectorTuning) Config {
	return Config{
		WindowSize:              t.GetWindowSize(),
		ValidityPeriod:          t.GetValidityPeriod(),
		MaxDriftSequence:        t.GetMaxDriftSequence(),
		DriftMultiplier:         t.GetDriftMultiplier(),
		LinearAngleThresholdDeg: t.GetLinearAngleThreshold(),
		FloorRadiusMeters:       t.GetFloorRadius(),
	}
}

// DefaultConfig returns the detector's documented defaults (W=10, V=15s,
// M=10, K=2.0, Θ=30°, floor radius 50m).
func DefaultConfig() Config {
	return NewConfig(config.EmptyDetectorTuning())
}
