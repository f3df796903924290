// Package config loads the detector's and simulator's tuning parameters
// from JSON defaults files, following the partial-update-over-defaults
// pattern: every field is a pointer, so a config file only needs to
// specify the values it wants to override, and Get* accessors fall back
// to the canonical default for any field left nil.
package config
