// Package simulate implements the synthetic-anomaly generator: given a
// clean baseline trajectory, it produces a corrupted trajectory plus
// ground-truth markers, so a drift.Detector's effectiveness can be
// measured against a known-correct answer.
//
// The generator takes an explicit *rand.Rand rather than relying on
// package-level random state, so a seeded run is fully reproducible.
//
// Dependency rule: simulate depends on geo, gpsfix, stats, and config; it
// has no knowledge of the drift package and is never called by it.
package simulate
