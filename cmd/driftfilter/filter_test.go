package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arcfix-nav/driftfilter/internal/fsutil"
	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/stats"
	"github.com/arcfix-nav/driftfilter/internal/storage/sqlite"
	"github.com/arcfix-nav/driftfilter/internal/timeutil"
)

func TestLoadTrajectoryFixes_MemoryFileSystem(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("trip.txt", []byte(
		"39.9,116.4,1000\n39.9001,116.4001,2000\n"), 0644))

	fixes, err := loadTrajectoryFixes(fsys, "trip.txt", "text")
	require.NoError(t, err)
	require.Len(t, fixes, 2)
	require.Equal(t, int64(1000), fixes[0].TimeMs)
	require.Equal(t, int64(2000), fixes[1].TimeMs)
}

func TestLoadTrajectoryFixes_MissingFile(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	_, err := loadTrajectoryFixes(fsys, "missing.txt", "text")
	require.Error(t, err)
}

func TestLoadTrajectoryFixes_UnsupportedFormat(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("trip.txt", []byte("39.9,116.4,1000\n"), 0644))

	_, err := loadTrajectoryFixes(fsys, "trip.txt", "xml")
	require.Error(t, err)
}

func TestPersistProcessingResult_UsesProvidedClock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "filter.db")
	clock := timeutil.NewMockClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	result := stats.ProcessingResult{
		OriginalPoints:  []gpsfix.Fix{{Lat: 39.9, Lng: 116.4, TimeMs: 1000}},
		ProcessedPoints: []gpsfix.Fix{{Lat: 39.9, Lng: 116.4, TimeMs: 1000}},
	}

	persistProcessingResult(clock, dbPath, "commute-1", "trip.txt", result)

	db, err := sqlite.OpenAndMigrate(dbPath)
	require.NoError(t, err)
	defer db.Close()

	id, err := db.LatestTrajectoryID()
	require.NoError(t, err)
	traj, err := db.GetTrajectory(id)
	require.NoError(t, err)
	require.Equal(t, clock.Now().UnixMilli(), traj.CreatedAt)
}
