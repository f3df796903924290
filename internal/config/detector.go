package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultDetectorConfigPath is the canonical tuning defaults file for the
// drift detector.
const DefaultDetectorConfigPath = "config/detector.defaults.json"

// DetectorTuning is the JSON-serialisable form of the detector's tunable
// parameters (spec.md §4.2 Configuration table). Every field is optional;
// the Get* accessors supply the documented defaults.
type DetectorTuning struct {
	WindowSize           *int     `json:"window_size,omitempty"`
	ValidityPeriodMs      *int64   `json:"validity_period_ms,omitempty"`
	MaxDriftSequence      *int     `json:"max_drift_sequence,omitempty"`
	DriftMultiplier       *float64 `json:"drift_multiplier,omitempty"`
	LinearAngleThresholdDeg *float64 `json:"linear_angle_threshold_deg,omitempty"`
	FloorRadiusMeters     *float64 `json:"floor_radius_meters,omitempty"`
}

// EmptyDetectorTuning returns a DetectorTuning with every field nil, i.e.
// all defaults apply.
func EmptyDetectorTuning() *DetectorTuning {
	return &DetectorTuning{}
}

// LoadDetectorTuning loads a DetectorTuning from a JSON file. Fields
// omitted from the file retain their defaults, so partial configs are
// safe.
func LoadDetectorTuning(path string) (*DetectorTuning, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg := EmptyDetectorTuning()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse detector config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detector configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that any set fields hold sane values.
func (c *DetectorTuning) Validate() error {
	if c.WindowSize != nil && *c.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive, got %d", *c.WindowSize)
	}
	if c.MaxDriftSequence != nil && *c.MaxDriftSequence <= 0 {
		return fmt.Errorf("max_drift_sequence must be positive, got %d", *c.MaxDriftSequence)
	}
	if c.DriftMultiplier != nil && *c.DriftMultiplier <= 0 {
		return fmt.Errorf("drift_multiplier must be positive, got %f", *c.DriftMultiplier)
	}
	if c.LinearAngleThresholdDeg != nil && (*c.LinearAngleThresholdDeg < 0 || *c.LinearAngleThresholdDeg > 180) {
		return fmt.Errorf("linear_angle_threshold_deg must be in [0,180], got %f", *c.LinearAngleThresholdDeg)
	}
	return nil
}

// GetWindowSize returns window_size or its default (10).
func (c *DetectorTuning) GetWindowSize() int {
	if c.WindowSize == nil {
		return 10
	}
	return *c.WindowSize
}

// GetValidityPeriod returns validity_period_ms or its default (15s) as a
// time.Duration.
func (c *DetectorTuning) GetValidityPeriod() time.Duration {
	if c.ValidityPeriodMs == nil {
		return 15000 * time.Millisecond
	}
	return time.Duration(*c.ValidityPeriodMs) * time.Millisecond
}

// GetMaxDriftSequence returns max_drift_sequence or its default (10).
func (c *DetectorTuning) GetMaxDriftSequence() int {
	if c.MaxDriftSequence == nil {
		return 10
	}
	return *c.MaxDriftSequence
}

// GetDriftMultiplier returns drift_multiplier or its default (2.0).
func (c *DetectorTuning) GetDriftMultiplier() float64 {
	if c.DriftMultiplier == nil {
		return 2.0
	}
	return *c.DriftMultiplier
}

// GetLinearAngleThreshold returns linear_angle_threshold_deg or its
// default (30 degrees).
func (c *DetectorTuning) GetLinearAngleThreshold() float64 {
	if c.LinearAngleThresholdDeg == nil {
		return 30.0
	}
	return *c.LinearAngleThresholdDeg
}

// GetFloorRadius returns floor_radius_meters or its default (50m).
func (c *DetectorTuning) GetFloorRadius() float64 {
	if c.FloorRadiusMeters == nil {
		return 50.0
	}
	return *c.FloorRadiusMeters
}

// MustLoadDefaultDetectorTuning loads the canonical detector defaults,
// searching upward from the current directory. Panics if the file cannot
// be found — intended for tests and binaries that have already validated
// config availability.
func MustLoadDefaultDetectorTuning() *DetectorTuning {
	candidates := []string{
		DefaultDetectorConfigPath,
		"../" + DefaultDetectorConfigPath,
		"../../" + DefaultDetectorConfigPath,
		"../../../" + DefaultDetectorConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadDetectorTuning(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultDetectorConfigPath + " - run from repository root")
}

// readConfigFile validates and reads a config file path, rejecting
// non-JSON extensions and oversized files.
func readConfigFile(path string) ([]byte, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}
