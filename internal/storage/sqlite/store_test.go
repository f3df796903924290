package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcfix-nav/driftfilter/internal/geo"
	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/stats"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), t.Name()+".db")
	db, err := OpenAndMigrate(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.MigrateUp())

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)
}

func TestCreateAndGetTrajectory(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateTrajectory("commute-1", "csv", 1000)
	require.NoError(t, err)

	rec, err := db.GetTrajectory(id)
	require.NoError(t, err)
	require.Equal(t, "commute-1", rec.Name)
	require.Equal(t, "csv", rec.Source)
	require.Equal(t, int64(1000), rec.CreatedAt)
}

func TestInsertAndListFixes(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateTrajectory("t1", "json", 0)
	require.NoError(t, err)

	fixes := []FixRecord{
		{Seq: 0, Fix: gpsfix.Fix{Lat: 1, Lng: 2, TimeMs: 1000}, Accepted: true},
		{Seq: 1, Fix: gpsfix.Fix{Lat: 1.001, Lng: 2.001, TimeMs: 2000}, Accepted: false},
	}
	require.NoError(t, db.InsertFixes(id, fixes))

	got, err := db.ListFixes(id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, fixes[0].Fix, got[0].Fix)
	require.True(t, got[0].Accepted)
	require.False(t, got[1].Accepted)
}

func TestInsertFixesEmptyIsNoop(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateTrajectory("t1", "json", 0)
	require.NoError(t, err)
	require.NoError(t, db.InsertFixes(id, nil))

	got, err := db.ListFixes(id)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestInsertAndListMarkers(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateTrajectory("t1", "json", 0)
	require.NoError(t, err)

	markers := []stats.Marker{
		{Kind: stats.KindStaticDrift, Position: gpsfix.Fix{Lat: 1, Lng: 2, TimeMs: 1000}, Description: "drift", TimeMs: 1500},
		{Kind: stats.KindRebuild, Position: gpsfix.Fix{Lat: 3, Lng: 4, TimeMs: 3000}, Description: "rebuild", TimeMs: 3500},
	}
	require.NoError(t, db.InsertMarkers(id, markers))

	got, err := db.ListMarkers(id)
	require.NoError(t, err)
	require.Equal(t, markers, got)
}

func TestInsertAndListStatsSnapshots(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateTrajectory("t1", "json", 0)
	require.NoError(t, err)

	snap := stats.Snapshot{
		WindowLength:  5,
		AcceptedCount: 10,
		HasBasePoint:  true,
		BaseRadius:    12.5,
		BasePoint:     &geo.Point{Lat: 1.5, Lng: 2.5},
		RejectedCount: 3,
		RebuildCount:  1,
		FilteringRate: 0.3,
	}
	require.NoError(t, db.InsertStatsSnapshot(id, 9000, snap))

	got, err := db.ListStatsSnapshots(id)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(9000), got[0].TakenAt)
	require.Equal(t, snap.WindowLength, got[0].Snapshot.WindowLength)
	require.Equal(t, snap.BaseRadius, got[0].Snapshot.BaseRadius)
	require.Equal(t, *snap.BasePoint, *got[0].Snapshot.BasePoint)
}

func TestInsertStatsSnapshotWithoutBasePoint(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateTrajectory("t1", "json", 0)
	require.NoError(t, err)

	require.NoError(t, db.InsertStatsSnapshot(id, 100, stats.Snapshot{HasBasePoint: false}))

	got, err := db.ListStatsSnapshots(id)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].Snapshot.BasePoint)
}

func TestSaveProcessingResult(t *testing.T) {
	db := openTestDB(t)

	result := stats.ProcessingResult{
		OriginalPoints: []gpsfix.Fix{
			{Lat: 1, Lng: 1, TimeMs: 1000},
			{Lat: 9, Lng: 9, TimeMs: 2000},
		},
		ProcessedPoints: []gpsfix.Fix{
			{Lat: 1, Lng: 1, TimeMs: 1000},
		},
		Markers: []stats.Marker{
			{Kind: stats.KindTunnel, Position: gpsfix.Fix{Lat: 9, Lng: 9, TimeMs: 2000}, Description: "drift candidate", TimeMs: 2000},
		},
		Statistics: stats.Snapshot{AcceptedCount: 1, RejectedCount: 1, FilteringRate: 0.5},
	}

	id, err := db.SaveProcessingResult("trip", "json", 500, result, 2500)
	require.NoError(t, err)

	fixes, err := db.ListFixes(id)
	require.NoError(t, err)
	require.Len(t, fixes, 2)
	require.True(t, fixes[0].Accepted)
	require.False(t, fixes[1].Accepted)

	markers, err := db.ListMarkers(id)
	require.NoError(t, err)
	require.Len(t, markers, 1)

	snapshots, err := db.ListStatsSnapshots(id)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, int64(2500), snapshots[0].TakenAt)
}

// TestSaveProcessingResult_DuplicateTimeMs covers gpsfix.Fix's documented
// contract (timestamps are only monotone non-decreasing, not unique): two
// distinct fixes sharing a TimeMs must not both be marked accepted just
// because one of them survived into ProcessedPoints.
func TestSaveProcessingResult_DuplicateTimeMs(t *testing.T) {
	db := openTestDB(t)

	result := stats.ProcessingResult{
		OriginalPoints: []gpsfix.Fix{
			{Lat: 1, Lng: 1, TimeMs: 1000},
			{Lat: 50, Lng: 50, TimeMs: 1000},
		},
		ProcessedPoints: []gpsfix.Fix{
			{Lat: 1, Lng: 1, TimeMs: 1000},
		},
		Statistics: stats.Snapshot{AcceptedCount: 1, RejectedCount: 1},
	}

	id, err := db.SaveProcessingResult("trip-dup", "json", 500, result, 2500)
	require.NoError(t, err)

	fixes, err := db.ListFixes(id)
	require.NoError(t, err)
	require.Len(t, fixes, 2)
	require.True(t, fixes[0].Accepted)
	require.False(t, fixes[1].Accepted, "fix sharing TimeMs with an accepted fix but never in ProcessedPoints must stay rejected")
}
