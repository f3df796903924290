package config

import (
	"encoding/json"
	"fmt"
)

// DefaultSimulatorConfigPath is the canonical tuning defaults file for the
// anomaly simulator.
const DefaultSimulatorConfigPath = "config/simulator.defaults.json"

// DriftBand is one piecewise-probability band of the drift-distance
// distribution: a fix drawn from this band has displacement uniformly in
// [Min,Max], and the band is chosen with probability Ratio.
type DriftBand struct {
	Ratio float64 `json:"ratio"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// SimulatorTuning is the JSON-serialisable form of the anomaly simulator's
// tunable parameters (spec.md §4.3 Configuration table).
type SimulatorTuning struct {
	StaticDriftCount    *int        `json:"static_drift_count,omitempty"`
	MovingDriftCount    *int        `json:"moving_drift_count,omitempty"`
	TunnelCount         *int        `json:"tunnel_count,omitempty"`
	SpeedScenarioCount  *int        `json:"speed_scenario_count,omitempty"`
	DriftDistanceMin    *float64    `json:"drift_distance_min,omitempty"`
	DriftDistanceMax    *float64    `json:"drift_distance_max,omitempty"`
	DriftDistribution   []DriftBand `json:"drift_distribution,omitempty"`
	StraightBearingTolDeg *float64  `json:"straight_bearing_tolerance_deg,omitempty"`
}

// EmptySimulatorTuning returns a SimulatorTuning with every field unset.
func EmptySimulatorTuning() *SimulatorTuning {
	return &SimulatorTuning{}
}

// LoadSimulatorTuning loads a SimulatorTuning from a JSON file. Fields
// omitted from the file retain their defaults.
func LoadSimulatorTuning(path string) (*SimulatorTuning, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg := EmptySimulatorTuning()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse simulator config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulator configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that any set fields hold sane values, including that a
// supplied DriftDistribution's ratios sum to 1 (within floating-point
// tolerance).
func (c *SimulatorTuning) Validate() error {
	for _, n := range []*int{c.StaticDriftCount, c.MovingDriftCount, c.TunnelCount, c.SpeedScenarioCount} {
		if n != nil && *n < 0 {
			return fmt.Errorf("anomaly counts must be non-negative, got %d", *n)
		}
	}
	if len(c.DriftDistribution) > 0 {
		var sum float64
		for _, b := range c.DriftDistribution {
			sum += b.Ratio
		}
		if sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("drift_distribution ratios must sum to 1, got %f", sum)
		}
	}
	return nil
}

// GetStaticDriftCount returns static_drift_count or its default (2).
func (c *SimulatorTuning) GetStaticDriftCount() int {
	if c.StaticDriftCount == nil {
		return 2
	}
	return *c.StaticDriftCount
}

// GetMovingDriftCount returns moving_drift_count or its default (2).
func (c *SimulatorTuning) GetMovingDriftCount() int {
	if c.MovingDriftCount == nil {
		return 2
	}
	return *c.MovingDriftCount
}

// GetTunnelCount returns tunnel_count or its default (1).
func (c *SimulatorTuning) GetTunnelCount() int {
	if c.TunnelCount == nil {
		return 1
	}
	return *c.TunnelCount
}

// GetSpeedScenarioCount returns speed_scenario_count or its default (1).
func (c *SimulatorTuning) GetSpeedScenarioCount() int {
	if c.SpeedScenarioCount == nil {
		return 1
	}
	return *c.SpeedScenarioCount
}

// GetDriftDistanceRange returns [min,max] or its default ([20, 200] metres).
func (c *SimulatorTuning) GetDriftDistanceRange() (float64, float64) {
	min, max := 20.0, 200.0
	if c.DriftDistanceMin != nil {
		min = *c.DriftDistanceMin
	}
	if c.DriftDistanceMax != nil {
		max = *c.DriftDistanceMax
	}
	return min, max
}

// GetDriftDistribution returns the configured piecewise probability bands,
// or a sensible three-band default: mostly small jitter, occasionally a
// large multipath spike.
func (c *SimulatorTuning) GetDriftDistribution() []DriftBand {
	if len(c.DriftDistribution) > 0 {
		return c.DriftDistribution
	}
	return []DriftBand{
		{Ratio: 0.6, Min: 20, Max: 60},
		{Ratio: 0.3, Min: 60, Max: 120},
		{Ratio: 0.1, Min: 120, Max: 200},
	}
}

// GetStraightBearingTolerance returns straight_bearing_tolerance_deg or its
// default (10 degrees), used by the speed scenario to detect straight runs.
func (c *SimulatorTuning) GetStraightBearingTolerance() float64 {
	if c.StraightBearingTolDeg == nil {
		return 10.0
	}
	return *c.StraightBearingTolDeg
}

// MustLoadDefaultSimulatorTuning loads the canonical simulator defaults,
// searching upward from the current directory. Panics if not found.
func MustLoadDefaultSimulatorTuning() *SimulatorTuning {
	candidates := []string{
		DefaultSimulatorConfigPath,
		"../" + DefaultSimulatorConfigPath,
		"../../" + DefaultSimulatorConfigPath,
		"../../../" + DefaultSimulatorConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadSimulatorTuning(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultSimulatorConfigPath + " - run from repository root")
}
