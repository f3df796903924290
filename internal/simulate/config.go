package simulate

import "github.com/arcfix-nav/driftfilter/internal/config"

// DriftBand re-exports config.DriftBand so callers building a Config by
// hand don't need to import internal/config directly.
type DriftBand = config.DriftBand

// Config is the anomaly simulator's resolved tuning (spec.md §4.3
// Configuration table).
type Config struct {
	StaticDriftCount            int
	MovingDriftCount            int
	TunnelCount                 int
	SpeedScenarioCount          int
	DriftDistanceMin            float64
	DriftDistanceMax            float64
	DriftDistribution           []DriftBand
	StraightBearingToleranceDeg float64
}

// NewConfig resolves a SimulatorTuning (with its defaults applied) into a
// Config.
func NewConfig(t *config.SimulatorTuning) Config {
	min, max := t.GetDriftDistanceRange()
	return Config{
		StaticDriftCount:            t.GetStaticDriftCount(),
		MovingDriftCount:            t.GetMovingDriftCount(),
		TunnelCount:                 t.GetTunnelCount(),
		SpeedScenarioCount:          t.GetSpeedScenarioCount(),
		DriftDistanceMin:            min,
		DriftDistanceMax:            max,
		DriftDistribution:           t.GetDriftDistribution(),
		StraightBearingToleranceDeg: t.GetStraightBearingTolerance(),
	}
}

// DefaultConfig returns the simulator's documented defaults.
func DefaultConfig() Config {
	return NewConfig(config.EmptySimulatorTuning())
}

// ZeroConfig returns a Config with every anomaly count set to zero — the
// configuration spec.md §8 invariant 9 requires produce an unmodified
// baseline.
func ZeroConfig() Config {
	cfg := DefaultConfig()
	cfg.StaticDriftCount = 0
	cfg.MovingDriftCount = 0
	cfg.TunnelCount = 0
	cfg.SpeedScenarioCount = 0
	return cfg
}
