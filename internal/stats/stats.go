package stats

import (
	"github.com/arcfix-nav/driftfilter/internal/geo"
	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
)

// MarkerKind identifies the kind of anomaly or detector event a Marker
// records.
type MarkerKind string

const (
	KindStaticDrift MarkerKind = "static-drift"
	KindMovingDrift MarkerKind = "moving-drift"
	KindTunnel      MarkerKind = "tunnel"
	KindSpeed       MarkerKind = "speed"
	KindRebuild     MarkerKind = "rebuild"
)

// WireKind collapses the simulator's static-drift/moving-drift distinction
// into the single "drift" kind used on the external wire format (spec §6),
// leaving tunnel/speed/rebuild unchanged.
func (k MarkerKind) WireKind() string {
	switch k {
	case KindStaticDrift, KindMovingDrift:
		return "drift"
	default:
		return string(k)
	}
}

// Marker is an append-only annotation produced either by the anomaly
// simulator (ground truth) or by the detector/reporter (observed events).
type Marker struct {
	Kind        MarkerKind
	Position    gpsfix.Fix
	Description string
	TimeMs      int64
}

// Snapshot is a by-value copy of the detector's current processing
// statistics (spec §4.5). It owns no references back into the detector.
type Snapshot struct {
	WindowLength          int
	AcceptedCount         int
	HasBasePoint          bool
	BaseRadius            float64
	ConsecutiveDriftCount int
	BaseAgeMs             int64
	BaseExpired           bool
	BasePoint             *geo.Point
	RejectedCount         int
	RebuildCount          int
	RebuildPositions      []gpsfix.Fix
	ProcessingTimeMs      int64
	FilteringRate         float64
}

// ProcessingResult is the external-facing shape of a completed batch run
// (spec §6): the input, the accepted/rejected partitions, the final
// statistics snapshot, and the full marker log.
type ProcessingResult struct {
	OriginalPoints  []gpsfix.Fix
	ProcessedPoints []gpsfix.Fix
	FilteredPoints  []gpsfix.Fix
	Statistics      Snapshot
	Markers         []Marker
}

// Accumulator is the pure counter/marker store the detector updates on
// every processFix call. It holds no knowledge of the window, drift
// buffer, or base point — those live on the detector and are merged in by
// Detector.Status() when building a Snapshot.
type Accumulator struct {
	InputCount       int64
	AcceptedCount    int64
	RejectedCount    int64
	RebuildCount     int64
	RebuildPositions []gpsfix.Fix
	Markers          []Marker
	ProcessingTimeMs int64
}

// RecordInput increments the input counter. Called once per processFix
// call regardless of outcome.
func (a *Accumulator) RecordInput() {
	a.InputCount++
}

// RecordAccepted increments the accepted counter.
func (a *Accumulator) RecordAccepted() {
	a.AcceptedCount++
}

// RecordRejected increments the rejected counter.
func (a *Accumulator) RecordRejected() {
	a.RejectedCount++
}

// RecordRebuild increments the rebuild counter and records the triggering
// fix's position for later inspection, mirroring the rebuild marker.
func (a *Accumulator) RecordRebuild(position gpsfix.Fix) {
	a.RebuildCount++
	a.RebuildPositions = append(a.RebuildPositions, position)
}

// AddMarker appends a marker to the append-only marker log.
func (a *Accumulator) AddMarker(m Marker) {
	a.Markers = append(a.Markers, m)
}

// FilteringRate returns rejectedCount / max(inputCount, 1), per spec §4.5.
func (a *Accumulator) FilteringRate() float64 {
	denom := a.InputCount
	if denom < 1 {
		denom = 1
	}
	return float64(a.RejectedCount) / float64(denom)
}

// Reset zeroes every counter and clears the marker log, for detector
// Reset().
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
