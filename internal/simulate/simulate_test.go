package simulate

import (
	"testing"

	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightBaseline(n int) []gpsfix.Fix {
	fixes := make([]gpsfix.Fix, n)
	for i := 0; i < n; i++ {
		fixes[i] = gpsfix.Fix{
			Lat:    39.9 + float64(i)*1e-5,
			Lng:    116.4 + float64(i)*1e-5,
			TimeMs: 1_700_000_000_000 + int64(i)*1000,
		}
	}
	return fixes
}

func TestZeroConfigRoundTrip(t *testing.T) {
	baseline := straightBaseline(100)
	sim := NewSeeded(ZeroConfig(), 1)
	result := sim.Simulate(baseline)
	assert.Equal(t, baseline, result.Points)
	assert.Empty(t, result.Markers)
}

func TestEmptyBaselineProducesEmptyResult(t *testing.T) {
	sim := NewSeeded(DefaultConfig(), 1)
	result := sim.Simulate(nil)
	assert.Empty(t, result.Points)
	assert.Empty(t, result.Markers)
}

func TestTunnelOnlyRemovesContiguousRun(t *testing.T) {
	baseline := straightBaseline(100)
	cfg := ZeroConfig()
	cfg.TunnelCount = 1

	sim := NewSeeded(cfg, 42)
	result := sim.Simulate(baseline)

	require.Less(t, len(result.Points), 100)
	require.Len(t, result.Markers, 1)
	assert.Equal(t, stats.KindTunnel, result.Markers[0].Kind)

	seen := make(map[int64]bool, len(result.Points))
	for _, f := range result.Points {
		seen[f.TimeMs] = true
	}
	var missing []int64
	for _, f := range baseline {
		if !seen[f.TimeMs] {
			missing = append(missing, f.TimeMs)
		}
	}
	require.NotEmpty(t, missing)
	for i := 1; i < len(missing); i++ {
		assert.Equal(t, missing[i-1]+1000, missing[i], "deleted fixes must be contiguous in baseline order")
	}
}

func TestOutputSortedByTimestamp(t *testing.T) {
	baseline := straightBaseline(60)
	cfg := DefaultConfig()
	sim := NewSeeded(cfg, 7)
	result := sim.Simulate(baseline)
	for i := 1; i < len(result.Points); i++ {
		assert.LessOrEqual(t, result.Points[i-1].TimeMs, result.Points[i].TimeMs)
	}
}

func TestResolveOverlapsDropsCollapsedRanges(t *testing.T) {
	ranges := []anomalyRange{
		{kind: stats.KindTunnel, start: 0, end: 5},
		{kind: stats.KindStaticDrift, start: 2, end: 4},
		{kind: stats.KindSpeed, start: 10, end: 20},
	}
	resolved := resolveOverlaps(ranges)
	require.Len(t, resolved, 2)
	assert.Equal(t, 0, resolved[0].start)
	assert.Equal(t, 5, resolved[0].end)
	assert.Equal(t, 10, resolved[1].start)
}

func TestCalculateDriftPointMovesAwayFromBase(t *testing.T) {
	base := gpsfix.Fix{Lat: 39.9, Lng: 116.4, TimeMs: 1000}
	drifted := calculateDriftPoint(base, 100, 0)
	assert.NotEqual(t, base.Lat, drifted.Lat)
	assert.InDelta(t, base.Lng, drifted.Lng, 1e-9, "bearing 0 (north) should not move longitude")
}

// lShapedBaseline heads due north for n1 fixes, then turns to head due
// east for n2 more, for tests that need a single sharp turn at a known
// point index.
func lShapedBaseline(n1, n2 int) []gpsfix.Fix {
	var fixes []gpsfix.Fix
	lat, lng := 39.9, 116.4
	tMs := int64(1_700_000_000_000)
	for i := 0; i < n1; i++ {
		fixes = append(fixes, gpsfix.Fix{Lat: lat + float64(i)*1e-4, Lng: lng, TimeMs: tMs})
		tMs += 1000
	}
	turnLat := lat + float64(n1-1)*1e-4
	for j := 1; j <= n2; j++ {
		fixes = append(fixes, gpsfix.Fix{Lat: turnLat, Lng: lng + float64(j)*1e-4, TimeMs: tMs})
		tMs += 1000
	}
	return fixes
}

// zigzagBaseline turns 90° on every single fix, so no straight run ever
// reaches the speed scenario's minimum length of 6 points.
func zigzagBaseline(n int) []gpsfix.Fix {
	fixes := make([]gpsfix.Fix, n)
	lat, lng := 39.9, 116.4
	tMs := int64(1_700_000_000_000)
	fixes[0] = gpsfix.Fix{Lat: lat, Lng: lng, TimeMs: tMs}
	for i := 1; i < n; i++ {
		tMs += 1000
		if i%2 == 1 {
			lat += 1e-4
		} else {
			lng += 1e-4
		}
		fixes[i] = gpsfix.Fix{Lat: lat, Lng: lng, TimeMs: tMs}
	}
	return fixes
}

func TestStraightRuns_StraightBaselineIsOneRun(t *testing.T) {
	baseline := straightBaseline(30)
	runs := straightRuns(baseline, 10)
	require.Len(t, runs, 1)
	assert.Equal(t, 0, runs[0].start)
	assert.Equal(t, len(baseline)-1, runs[0].end)
}

func TestStraightRuns_SplitsAtSharpTurn(t *testing.T) {
	baseline := lShapedBaseline(15, 15)
	runs := straightRuns(baseline, 10)
	require.Len(t, runs, 2)
	assert.Equal(t, 0, runs[0].start)
	assert.Equal(t, len(baseline)-1, runs[1].end)
	assert.Less(t, runs[0].end, runs[1].end)
}

func TestStraightRuns_ZigzagNeverReachesSixPoints(t *testing.T) {
	baseline := zigzagBaseline(40)
	runs := straightRuns(baseline, 10)
	for _, r := range runs {
		assert.Less(t, r.end-r.start+1, 6, "zigzag run %+v should never reach the speed scenario's minimum length", r)
	}
}

func TestSampleSpeedRanges_StaysWithinStraightRun(t *testing.T) {
	baseline := lShapedBaseline(30, 30)
	sim := NewSeeded(DefaultConfig(), 42)

	for i := 0; i < 50; i++ {
		ranges := sim.sampleSpeedRanges(1, baseline)
		require.Len(t, ranges, 1)
		r := ranges[0]
		inNorthLeg := r.end < 30
		inEastLeg := r.start >= 29
		assert.True(t, inNorthLeg || inEastLeg,
			"range %+v straddles the turn between the baseline's two legs", r)
	}
}

func TestSampleSpeedRanges_NoEligibleRunReturnsNil(t *testing.T) {
	baseline := zigzagBaseline(40)
	sim := NewSeeded(DefaultConfig(), 1)
	ranges := sim.sampleSpeedRanges(5, baseline)
	assert.Empty(t, ranges)
}
