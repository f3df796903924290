package simulate

import (
	"math"
	"math/rand"
	"sort"

	"github.com/arcfix-nav/driftfilter/internal/geo"
	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/stats"
)

// Result is the simulator's output: the corrupted trajectory plus the
// ground-truth markers describing what was injected and where.
type Result struct {
	Points  []gpsfix.Fix
	Markers []stats.Marker
}

// Simulator generates anomaly-corrupted trajectories from a clean
// baseline. It holds no state across calls to Simulate beyond its *rand.Rand,
// so a single Simulator can be reused across baselines.
type Simulator struct {
	cfg Config
	rng *rand.Rand
}

// New constructs a Simulator with an explicit PRNG, per spec.md §9's fix for
// the source's reliance on global random state.
func New(cfg Config, rng *rand.Rand) *Simulator {
	return &Simulator{cfg: cfg, rng: rng}
}

// NewSeeded constructs a Simulator from an integer seed, for callers that
// don't need to share a *rand.Rand across components.
func NewSeeded(cfg Config, seed int64) *Simulator {
	return New(cfg, rand.New(rand.NewSource(seed)))
}

type anomalyRange struct {
	kind       stats.MarkerKind
	start, end int // inclusive, into the baseline slice
}

// Simulate runs the algorithm of spec.md §4.3: sample non-overlapping
// ranges for each anomaly type, apply each in descending start-index order,
// then sort and deduplicate the result.
func (s *Simulator) Simulate(baseline []gpsfix.Fix) Result {
	if len(baseline) == 0 {
		return Result{}
	}

	ranges := s.sampleRanges(baseline)
	ranges = resolveOverlaps(ranges)

	points := append([]gpsfix.Fix(nil), baseline...)
	var markers []stats.Marker

	// Apply highest-start-index ranges first so earlier indices remain
	// valid as later (lower-index) transforms splice/delete in place.
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start > ranges[j].start })
	for _, r := range ranges {
		switch r.kind {
		case stats.KindStaticDrift:
			points, markers = s.applyStaticDrift(points, markers, r)
		case stats.KindMovingDrift:
			points, markers = s.applyMovingDrift(points, markers, r)
		case stats.KindTunnel:
			points, markers = s.applyTunnel(points, markers, r)
		case stats.KindSpeed:
			points, markers = s.applySpeedScenario(points, markers, r)
		}
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].TimeMs < points[j].TimeMs })
	points = dedupe(points)

	return Result{Points: points, Markers: markers}
}

// sampleRanges draws one [start,end] range per configured anomaly instance,
// uniformly over the baseline. The ranges may overlap; resolveOverlaps
// removes the overlaps afterwards.
func (s *Simulator) sampleRanges(baseline []gpsfix.Fix) []anomalyRange {
	n := len(baseline)
	var ranges []anomalyRange
	ranges = append(ranges, s.sampleKind(stats.KindStaticDrift, s.cfg.StaticDriftCount, n, 3, 8)...)
	ranges = append(ranges, s.sampleKind(stats.KindMovingDrift, s.cfg.MovingDriftCount, n, 5, 15)...)
	ranges = append(ranges, s.sampleKind(stats.KindTunnel, s.cfg.TunnelCount, n, 3, 10)...)
	ranges = append(ranges, s.sampleSpeedRanges(s.cfg.SpeedScenarioCount, baseline)...)

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	return ranges
}

func (s *Simulator) sampleKind(kind stats.MarkerKind, count, n, minLen, maxLen int) []anomalyRange {
	var out []anomalyRange
	for i := 0; i < count; i++ {
		length := minLen
		if maxLen > minLen {
			length = minLen + s.rng.Intn(maxLen-minLen+1)
		}
		if length > n {
			length = n
		}
		start := 0
		if n-length > 0 {
			start = s.rng.Intn(n - length + 1)
		}
		out = append(out, anomalyRange{kind: kind, start: start, end: start + length - 1})
	}
	return out
}

// straightRun is a maximal [start,end] range of point indices (inclusive)
// within which consecutive bearings never turn by more than the configured
// tolerance, i.e. a candidate straight-line segment.
type straightRun struct {
	start, end int
}

// straightRuns scans baseline for maximal straight segments: spec.md §4.3
// requires the speed under-sampling scenario to only fire "inside a
// detected straight segment (consecutive bearings agree within 10°)", so
// this walks geo.Bearing between consecutive fixes and splits the
// trajectory wherever geo.AngleDiff between neighboring bearings exceeds
// tolDeg.
func straightRuns(baseline []gpsfix.Fix, tolDeg float64) []straightRun {
	n := len(baseline)
	if n < 3 {
		return nil
	}

	bearings := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		a := geo.Point{Lat: baseline[i].Lat, Lng: baseline[i].Lng}
		b := geo.Point{Lat: baseline[i+1].Lat, Lng: baseline[i+1].Lng}
		bearings[i] = geo.Bearing(a, b)
	}

	var runs []straightRun
	start := 0
	for i := 1; i < len(bearings); i++ {
		if geo.AngleDiff(bearings[i-1], bearings[i]) > tolDeg {
			runs = append(runs, straightRun{start: start, end: i})
			start = i
		}
	}
	runs = append(runs, straightRun{start: start, end: len(bearings)})
	return runs
}

// sampleSpeedRanges draws ranges only inside straightRuns (spec.md §4.3),
// rounding lengths to a multiple of 6 since the speed scenario's
// sub-sampling operates on six-point runs. Baselines with no straight run
// of at least 6 points yield no speed ranges at all.
func (s *Simulator) sampleSpeedRanges(count int, baseline []gpsfix.Fix) []anomalyRange {
	runs := straightRuns(baseline, s.cfg.StraightBearingToleranceDeg)

	var eligible []straightRun
	for _, r := range runs {
		if r.end-r.start+1 >= 6 {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	var out []anomalyRange
	for i := 0; i < count; i++ {
		run := eligible[s.rng.Intn(len(eligible))]
		runLen := run.end - run.start + 1

		maxRuns := runLen / 6
		if maxRuns > 3 {
			maxRuns = 3
		}
		length := (1 + s.rng.Intn(maxRuns)) * 6

		start := run.start
		if runLen-length > 0 {
			start = run.start + s.rng.Intn(runLen-length+1)
		}
		out = append(out, anomalyRange{kind: stats.KindSpeed, start: start, end: start + length - 1})
	}
	return out
}

// resolveOverlaps sorts ranges by start and, for each pair that overlaps,
// pushes the later range's start past the earlier range's end. A range
// that collapses to empty (start > end) is dropped.
func resolveOverlaps(ranges []anomalyRange) []anomalyRange {
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

	var resolved []anomalyRange
	lastEnd := -1
	for _, r := range ranges {
		if r.start <= lastEnd {
			r.start = lastEnd + 1
		}
		if r.start > r.end {
			continue
		}
		resolved = append(resolved, r)
		lastEnd = r.end
	}
	return resolved
}

// applyStaticDrift replaces the fixes in r with synthetic fixes clustered
// around the range's first fix, simulating a stationary receiver reporting
// multipath positions instead of its real one. Original timestamps are
// preserved so the trajectory's timing is undisturbed.
func (s *Simulator) applyStaticDrift(points []gpsfix.Fix, markers []stats.Marker, r anomalyRange) ([]gpsfix.Fix, []stats.Marker) {
	anchor := points[r.start]
	for i := r.start; i <= r.end && i < len(points); i++ {
		d := s.drawDriftDistance()
		theta := s.rng.Float64() * 360
		drifted := calculateDriftPoint(anchor, d, theta)
		drifted.TimeMs = points[i].TimeMs
		points[i] = drifted
	}
	markers = append(markers, stats.Marker{
		Kind:        stats.KindStaticDrift,
		Position:    anchor,
		Description: "static drift cluster",
		TimeMs:      anchor.TimeMs,
	})
	return points, markers
}

// applyMovingDrift displaces each fix in r by a magnitude that ramps up and
// back down across the segment (sin(π·progress)) with a direction that
// rotates linearly across the segment, simulating a drift that rides along
// an existing moving run rather than anchoring to one point.
func (s *Simulator) applyMovingDrift(points []gpsfix.Fix, markers []stats.Marker, r anomalyRange) ([]gpsfix.Fix, []stats.Marker) {
	span := r.end - r.start
	if span <= 0 {
		span = 1
	}
	maxD := s.drawDriftDistance()
	for i := r.start; i <= r.end && i < len(points); i++ {
		progress := float64(i-r.start) / float64(span)
		magnitude := maxD * math.Sin(math.Pi*progress)
		theta := 360 * progress
		original := points[i]
		drifted := calculateDriftPoint(original, magnitude, theta)
		drifted.TimeMs = original.TimeMs
		points[i] = drifted
	}
	markers = append(markers, stats.Marker{
		Kind:        stats.KindMovingDrift,
		Position:    points[r.start],
		Description: "moving drift segment",
		TimeMs:      points[r.start].TimeMs,
	})
	return points, markers
}

// applyTunnel deletes the fixes in r, simulating signal loss.
func (s *Simulator) applyTunnel(points []gpsfix.Fix, markers []stats.Marker, r anomalyRange) ([]gpsfix.Fix, []stats.Marker) {
	if r.start >= len(points) {
		return points, markers
	}
	end := r.end
	if end >= len(points) {
		end = len(points) - 1
	}
	marker := stats.Marker{
		Kind:        stats.KindTunnel,
		Position:    points[r.start],
		Description: "tunnel",
		TimeMs:      points[r.start].TimeMs,
	}
	points = append(points[:r.start:r.start], points[end+1:]...)
	return points, append(markers, marker)
}

// applySpeedScenario drops the 2nd, 4th, and 5th fix (1-indexed) of each
// six-point run in r, mimicking high-speed under-sampling, and overlays a
// small periodic lateral drift on the surviving points.
func (s *Simulator) applySpeedScenario(points []gpsfix.Fix, markers []stats.Marker, r anomalyRange) ([]gpsfix.Fix, []stats.Marker) {
	if r.start >= len(points) {
		return points, markers
	}
	end := r.end
	if end >= len(points) {
		end = len(points) - 1
	}

	dropOffsets := map[int]bool{1: true, 3: true, 4: true}
	lateralMagnitude := s.cfg.DriftDistanceMin * 0.1

	marker := stats.Marker{
		Kind:        stats.KindSpeed,
		Position:    points[r.start],
		Description: "speed under-sampling",
		TimeMs:      points[r.start].TimeMs,
	}

	var kept []gpsfix.Fix
	for i := r.start; i <= end; i++ {
		offset := (i - r.start) % 6
		if dropOffsets[offset] {
			continue
		}
		f := points[i]
		lateral := lateralMagnitude * math.Sin(2*math.Pi*float64(i-r.start)/6)
		drifted := calculateDriftPoint(f, lateral, 90)
		drifted.TimeMs = f.TimeMs
		kept = append(kept, drifted)
	}

	result := append([]gpsfix.Fix(nil), points[:r.start]...)
	result = append(result, kept...)
	result = append(result, points[end+1:]...)
	return result, append(markers, marker)
}

// drawDriftDistance samples a displacement magnitude from the configured
// piecewise probability bands, or uniformly over [min,max] if no bands are
// configured.
func (s *Simulator) drawDriftDistance() float64 {
	bands := s.cfg.DriftDistribution
	if len(bands) == 0 {
		return s.cfg.DriftDistanceMin + s.rng.Float64()*(s.cfg.DriftDistanceMax-s.cfg.DriftDistanceMin)
	}
	roll := s.rng.Float64()
	var cumulative float64
	for _, b := range bands {
		cumulative += b.Ratio
		if roll <= cumulative {
			return b.Min + s.rng.Float64()*(b.Max-b.Min)
		}
	}
	last := bands[len(bands)-1]
	return last.Min + s.rng.Float64()*(last.Max-last.Min)
}

// calculateDriftPoint converts a (distance, bearing) offset from base into
// a new fix using the local-tangent approximation (spec.md §4.3).
func calculateDriftPoint(base gpsfix.Fix, d, thetaDeg float64) gpsfix.Fix {
	theta := thetaDeg * math.Pi / 180
	dLat := d * math.Cos(theta) / geo.EarthRadiusMeters * 180 / math.Pi
	dLng := d * math.Sin(theta) / (geo.EarthRadiusMeters * math.Cos(base.Lat*math.Pi/180)) * 180 / math.Pi
	return gpsfix.Fix{Lat: base.Lat + dLat, Lng: base.Lng + dLng, TimeMs: base.TimeMs}
}

func dedupe(points []gpsfix.Fix) []gpsfix.Fix {
	seen := make(map[gpsfix.Fix]bool, len(points))
	out := make([]gpsfix.Fix, 0, len(points))
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
