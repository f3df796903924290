package drift

import (
	"sync"
	"time"

	"github.com/arcfix-nav/driftfilter/internal/geo"
	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/stats"
	"github.com/google/uuid"
)

// Core is the concrete Detector: a single-threaded, causal state machine
// guarded by a mutex so it is safe to share across goroutines the way the
// teacher's l5tracks.Tracker guards its track map (spec.md §5 permits this:
// one instance per trajectory, no cross-talk between instances).
type Core struct {
	mu sync.Mutex

	id  uuid.UUID
	cfg Config

	window      []gpsfix.Fix
	driftBuffer []gpsfix.Fix
	base        *BasePoint

	acceptedPoints []gpsfix.Fix
	rejectedPoints []gpsfix.Fix

	acc stats.Accumulator

	lastFixTimeMs int64
}

// NewCore constructs a Core with the given tuning.
func NewCore(cfg Config) *Core {
	return &Core{id: uuid.New(), cfg: cfg}
}

// ID returns the detector instance's identity, used to correlate rebuild
// markers across logs when multiple detectors run concurrently.
func (c *Core) ID() uuid.UUID {
	return c.id
}

// SetConfig replaces the detector's tuning. It does not reset any state;
// the new thresholds apply starting with the next processFix call.
func (c *Core) SetConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// Reset discards the window, drift buffer, base point, and all counters,
// returning the detector to its just-constructed state (spec.md §8
// invariant 8, idempotent reset).
func (c *Core) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.window = nil
	c.driftBuffer = nil
	c.base = nil
	c.acceptedPoints = nil
	c.rejectedPoints = nil
	c.acc.Reset()
	c.lastFixTimeMs = 0
}

// Status returns a by-value snapshot of the detector's current state
// (spec.md §4.5).
func (c *Core) Status() stats.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Core) statusLocked() stats.Snapshot {
	snap := stats.Snapshot{
		WindowLength:          len(c.window),
		AcceptedCount:         int(c.acc.AcceptedCount),
		RejectedCount:         int(c.acc.RejectedCount),
		RebuildCount:          int(c.acc.RebuildCount),
		RebuildPositions:      append([]gpsfix.Fix(nil), c.acc.RebuildPositions...),
		ConsecutiveDriftCount: len(c.driftBuffer),
		ProcessingTimeMs:      c.acc.ProcessingTimeMs,
		FilteringRate:         c.acc.FilteringRate(),
	}
	if c.base != nil {
		snap.HasBasePoint = true
		snap.BaseRadius = c.base.Radius
		bp := c.base.Point
		snap.BasePoint = &bp
		age := c.lastFixTimeMs - c.base.CreatedAtMs
		snap.BaseAgeMs = age
		snap.BaseExpired = age > c.cfg.ValidityPeriod.Milliseconds()
	}
	return snap
}

// ProcessTrajectory runs every fix through processFix in order and returns
// the full result shape (spec.md §6). An empty trajectory returns a
// zeroed, non-error result (spec.md §7 EmptyTrajectory) without touching
// detector state.
func (c *Core) ProcessTrajectory(fixes []gpsfix.Fix) stats.ProcessingResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(fixes) == 0 {
		return stats.ProcessingResult{Statistics: c.statusLocked()}
	}

	start := time.Now()
	for _, f := range fixes {
		c.processFixLocked(f)
	}
	c.acc.ProcessingTimeMs = time.Since(start).Milliseconds()

	return stats.ProcessingResult{
		OriginalPoints:  append([]gpsfix.Fix(nil), fixes...),
		ProcessedPoints: append([]gpsfix.Fix(nil), c.acceptedPoints...),
		FilteredPoints:  append([]gpsfix.Fix(nil), c.rejectedPoints...),
		Statistics:      c.statusLocked(),
		Markers:         append([]stats.Marker(nil), c.acc.Markers...),
	}
}

// ProcessFix runs the per-fix contract of spec.md §4.2 and returns the
// accept/reject decision. Decisions returned for earlier calls are never
// retracted; a later linear-motion recovery only changes the detector's
// internal bookkeeping (acceptedPoints/rejectedPoints/counters/markers),
// never a Decision already handed back to a caller.
func (c *Core) ProcessFix(f gpsfix.Fix) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processFixLocked(f)
}

func (c *Core) processFixLocked(f gpsfix.Fix) Decision {
	c.acc.RecordInput()
	c.lastFixTimeMs = f.TimeMs

	// 1. Warmup short-circuit.
	if len(c.window) < c.cfg.WindowSize {
		c.appendWindow(f)
		c.markAccepted(f)
		if len(c.window) == c.cfg.WindowSize {
			c.buildBasePoint(f, false)
		}
		return Accepted
	}

	// 2. Expiry check, resolved against the triggering fix's own
	// timestamp rather than the wall clock (spec.md §9 Open Question 1).
	if f.TimeMs-c.base.CreatedAtMs > c.cfg.ValidityPeriod.Milliseconds() {
		c.window = []gpsfix.Fix{f}
		c.driftBuffer = nil
		c.base = nil
		c.markAccepted(f)
		return Accepted
	}

	// 3. Drift test.
	d := geo.Distance(toPoint(f), c.base.Point)
	isDrift := c.base.Radius > 0 && d > c.cfg.DriftMultiplier*c.base.Radius
	if isDrift {
		return c.handleDriftCandidate(f)
	}

	// 5. Non-drift path: a single good fix cancels any pending suspicion.
	c.driftBuffer = nil
	c.appendWindow(f)
	c.markAccepted(f)
	c.buildBasePoint(f, false)
	return Accepted
}

// handleDriftCandidate implements step 4 of the per-fix contract: buffer
// the candidate, test for linear-motion recovery, then for a forced
// rebuild, else permanently reject.
func (c *Core) handleDriftCandidate(f gpsfix.Fix) Decision {
	c.driftBuffer = append(c.driftBuffer, f)
	if len(c.driftBuffer) > c.cfg.MaxDriftSequence {
		c.driftBuffer = c.driftBuffer[1:]
	}
	c.markRejected(f)

	if len(c.driftBuffer) >= 3 {
		last3 := c.driftBuffer[len(c.driftBuffer)-3:]
		angle := geo.MinTriangleAngle(toPoint(last3[0]), toPoint(last3[1]), toPoint(last3[2]))
		if angle < c.cfg.LinearAngleThresholdDeg {
			furthest := 0.0
			for _, p := range last3 {
				if dd := geo.Distance(toPoint(p), c.base.Point); dd > furthest {
					furthest = dd
				}
			}
			if furthest <= 5*c.cfg.DriftMultiplier*c.base.Radius {
				return c.recoverLinearMotion(f)
			}
		}
	}

	if len(c.driftBuffer) >= c.cfg.MaxDriftSequence {
		return c.forcedRebuild(f)
	}

	return Rejected
}

// recoverLinearMotion reclassifies every buffered rejection as accepted,
// folds them into the window (respecting the W cap), and rebuilds the
// base point from that window.
func (c *Core) recoverLinearMotion(f gpsfix.Fix) Decision {
	buf := append([]gpsfix.Fix(nil), c.driftBuffer...)
	c.reclassifyAsAccepted(buf)
	for _, rf := range buf {
		c.appendWindow(rf)
	}
	c.driftBuffer = nil
	c.buildBasePoint(f, true)
	c.recordRebuild(f, "linear-motion recovery")
	return Accepted
}

// forcedRebuild seeds the window from the exhausted drift buffer and
// rebuilds the base point from it, concluding the true position has
// shifted. The new window is trimmed to W from the most recent end if the
// buffer (capped at M) held more entries than the window allows.
func (c *Core) forcedRebuild(f gpsfix.Fix) Decision {
	buf := append([]gpsfix.Fix(nil), c.driftBuffer...)
	c.reclassifyAsAccepted(buf)
	c.window = buf
	if len(c.window) > c.cfg.WindowSize {
		c.window = c.window[len(c.window)-c.cfg.WindowSize:]
	}
	c.driftBuffer = nil
	c.buildBasePoint(f, true)
	c.recordRebuild(f, "forced rebuild")
	return Accepted
}

// reclassifyAsAccepted moves buf's entries from rejectedPoints/RejectedCount
// to acceptedPoints/AcceptedCount. buf is always exactly the tail of
// rejectedPoints: every drift-candidate rejection is appended to both the
// drift buffer and rejectedPoints in lockstep, and the buffer is only ever
// cleared together with a reclassification or the non-drift path (which
// appends nothing to rejectedPoints while clearing it).
func (c *Core) reclassifyAsAccepted(buf []gpsfix.Fix) {
	n := len(buf)
	cut := len(c.rejectedPoints) - n
	if cut < 0 {
		cut = 0
	}
	reclassified := c.rejectedPoints[cut:]
	c.rejectedPoints = c.rejectedPoints[:cut]
	c.acc.RejectedCount -= int64(len(reclassified))
	for _, rf := range reclassified {
		c.acceptedPoints = append(c.acceptedPoints, rf)
		c.acc.AcceptedCount++
	}
}

func (c *Core) recordRebuild(f gpsfix.Fix, description string) {
	c.acc.RecordRebuild(f)
	c.acc.AddMarker(stats.Marker{
		Kind:        stats.KindRebuild,
		Position:    f,
		Description: description,
		TimeMs:      f.TimeMs,
	})
}

// buildBasePoint derives a fresh base point from the current window.
// rebuild selects the centroid + median-radius-clamped-to-floor variant
// used by the two drift-recovery paths; the non-rebuild variant (initial
// warmup build and ordinary step-5 refresh) uses medianPoint + the
// maximum-over-window radius. Both satisfy the invariants in spec.md §3;
// this split is the fixed, documented choice spec.md §4.2 calls for.
func (c *Core) buildBasePoint(f gpsfix.Fix, rebuild bool) {
	points := toPoints(c.window)

	var center geo.Point
	var radius float64
	if rebuild {
		center, _ = geo.Centroid(points)
		radius = geo.MedianDistance(center, points)
		if radius < c.cfg.FloorRadiusMeters {
			radius = c.cfg.FloorRadiusMeters
		}
	} else {
		center, _ = geo.MedianPoint(points)
		radius = geo.MaxDistance(center, points)
	}

	c.base = &BasePoint{
		Point:       center,
		Radius:      radius,
		CreatedAtMs: f.TimeMs,
		SourceCount: len(c.window),
		ID:          uuid.New(),
	}
}

func (c *Core) appendWindow(f gpsfix.Fix) {
	c.window = append(c.window, f)
	if len(c.window) > c.cfg.WindowSize {
		c.window = c.window[1:]
	}
}

func (c *Core) markAccepted(f gpsfix.Fix) {
	c.acceptedPoints = append(c.acceptedPoints, f)
	c.acc.RecordAccepted()
}

func (c *Core) markRejected(f gpsfix.Fix) {
	c.rejectedPoints = append(c.rejectedPoints, f)
	c.acc.RecordRejected()
}

func toPoint(f gpsfix.Fix) geo.Point {
	return geo.Point{Lat: f.Lat, Lng: f.Lng}
}

func toPoints(fixes []gpsfix.Fix) []geo.Point {
	points := make([]geo.Point, len(fixes))
	for i, f := range fixes {
		points[i] = toPoint(f)
	}
	return points
}
