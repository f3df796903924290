package drift

import (
	"github.com/arcfix-nav/driftfilter/internal/geo"
	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/stats"
	"github.com/google/uuid"
)

// Decision is the per-fix outcome of processFix.
type Decision int

const (
	Rejected Decision = iota
	Accepted
)

func (d Decision) String() string {
	if d == Accepted {
		return "accepted"
	}
	return "rejected"
}

// BasePoint is the detector's rolling reference position (spec.md §3). It is
// owned exclusively by the Core that built it; callers only ever see a
// by-value copy through stats.Snapshot.BasePoint.
type BasePoint struct {
	Point       geo.Point
	Radius      float64
	CreatedAtMs int64
	SourceCount int
	ID          uuid.UUID
}

// Detector is the capability record a drift-filtering algorithm must
// implement (spec.md §9 "Polymorphism over algorithms"). Core is the only
// implementation today; the interface exists so a future Kalman-based
// variant can be substituted without touching callers.
type Detector interface {
	ProcessFix(f gpsfix.Fix) Decision
	ProcessTrajectory(fixes []gpsfix.Fix) stats.ProcessingResult
	Status() stats.Snapshot
	SetConfig(cfg Config)
	Reset()
}

var _ Detector = (*Core)(nil)
