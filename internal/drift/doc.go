// Package drift owns the streaming drift detector and base-point manager:
// the per-fix accept/reject state machine, the sliding window, the drift
// buffer, and the base-point lifecycle.
//
// Responsibilities: processFix's warmup/expiry/drift-test/recovery
// ordering; base-point build (median or centroid, max or median-clamped
// radius); linear-motion recovery vs. forced rebuild.
//
// Dependency rule: drift may depend on geo, gpsfix, stats, and config, but
// nothing outside this package depends on drift's internals — callers see
// only the Detector interface and stats.Snapshot/stats.ProcessingResult.
package drift
