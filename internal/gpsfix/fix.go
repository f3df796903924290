package gpsfix

import "fmt"

// Fix is a single, immutable GPS position report.
//
// Lat is in degrees WGS-84, in [-90, 90]. Lng is in degrees WGS-84, in
// [-180, 180]. TimeMs is a milliseconds-since-epoch timestamp; within one
// trajectory it is expected to be monotone non-decreasing, but Fix itself
// does not enforce ordering across a sequence — that is the caller's
// responsibility (see internal/drift).
type Fix struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	TimeMs int64   `json:"timestamp"`
}

// ExtendedFix is a Fix plus optional telemetry fields. None of Speed,
// Altitude, or Course are consulted by the detector (spec Non-goals); they
// exist purely for adapters and exporters that want to round-trip them.
type ExtendedFix struct {
	Fix
	Speed    *float64 // metres/second
	Altitude *float64 // metres
	Course   *float64 // degrees true
}

// Reduce drops the optional telemetry fields, producing the plain Fix the
// detector operates on.
func (e ExtendedFix) Reduce() Fix {
	return e.Fix
}

// Valid reports whether f satisfies the Fix invariants: latitude and
// longitude within their valid geodetic ranges.
func (f Fix) Valid() bool {
	return f.Lat >= -90 && f.Lat <= 90 && f.Lng >= -180 && f.Lng <= 180
}

// Validate is Valid expressed as an error, for call sites that want a
// diagnostic rather than a boolean.
func (f Fix) Validate() error {
	if !f.Valid() {
		return fmt.Errorf("gpsfix: fix (%g, %g) out of range: lat must be in [-90,90], lng in [-180,180]", f.Lat, f.Lng)
	}
	return nil
}
