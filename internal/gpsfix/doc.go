// Package gpsfix owns the canonical position-fix data model.
//
// Responsibilities: the immutable Fix and ExtendedFix types, and the
// reduction of an ExtendedFix to the plain Fix the detector consumes.
//
// Dependency rule: gpsfix has no dependency on the detector, simulator,
// or adapters — every other package depends on it.
package gpsfix
