// Package gpsserial wires a GNSS receiver's serial line up to a drift
// detector (SPEC_FULL.md §4.4 expansion: "a serial adapter... reads
// NMEA-ish or raw lat/lng,timestamp lines from a GNSS receiver on a moving
// vehicle and feeds them to parseFromString one line at a time").
//
// It is a thin composition of internal/serialmux (the port multiplexer)
// and internal/serialmux's ClassifyPayload/HandleEvent, grounded on the
// teacher's cmd/radar.go wiring: one goroutine runs Monitor, a second
// subscribes and feeds each line to the detector, both stoppable via
// context cancellation.
package gpsserial
