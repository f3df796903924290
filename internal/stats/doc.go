// Package stats implements the statistics and marker reporter: a pure
// accumulator of monotone counters plus an append-only marker log, both
// updated by the detector but exposed only as by-value snapshots.
//
// Dependency rule: stats depends only on gpsfix and geo. It never calls
// back into the detector.
package stats
