package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/arcfix-nav/driftfilter/internal/report"
	"github.com/arcfix-nav/driftfilter/internal/security"
	"github.com/arcfix-nav/driftfilter/internal/stats"
	"github.com/arcfix-nav/driftfilter/internal/storage/sqlite"
)

// shutdownTimeout bounds how long the serve subcommand's HTTP server waits
// for in-flight requests to finish during graceful shutdown.
const shutdownTimeout = 5 * time.Second

// runReport loads a stored trajectory from -db-path and renders it as
// either an interactive HTML dashboard or a static PNG plot, depending on
// -format.
func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dbPath := fs.String("db-path", "driftfilter.db", "path to sqlite DB file")
	trajectoryID := fs.String("trajectory", "", "trajectory UUID to render (required)")
	output := fs.String("output", "report.html", "output file path")
	format := fs.String("format", "html", "report format: html or png")
	fs.Parse(args)

	if *trajectoryID == "" {
		log.Fatal("report: -trajectory is required")
	}
	id, err := uuid.Parse(*trajectoryID)
	if err != nil {
		log.Fatalf("report: invalid -trajectory %q: %v", *trajectoryID, err)
	}

	db, err := sqlite.OpenAndMigrate(*dbPath)
	if err != nil {
		log.Fatalf("report: failed to open %s: %v", *dbPath, err)
	}
	defer db.Close()

	traj, result, history, err := loadTrajectoryResult(db, id)
	if err != nil {
		log.Fatalf("report: %v", err)
	}
	log.Printf("[report] loaded trajectory %s (%s): %d points, %d markers",
		traj.Name, traj.ID, len(result.OriginalPoints), len(result.Markers))

	if err := security.ValidateExportPath(*output); err != nil {
		log.Fatalf("report: refusing to write %s: %v", *output, err)
	}

	switch *format {
	case "html":
		html, err := report.RenderDashboardHTML(traj.Name, result, history)
		if err != nil {
			log.Fatalf("report: render dashboard: %v", err)
		}
		if err := os.WriteFile(*output, html, 0644); err != nil {
			log.Fatalf("report: write %s: %v", *output, err)
		}
	case "png":
		if err := report.RenderStaticPlot(*output, traj.Name, result); err != nil {
			log.Fatalf("report: render plot: %v", err)
		}
	default:
		log.Fatalf("report: unsupported -format %q: expected html or png", *format)
	}
	log.Printf("[report] wrote %s to %s", *format, *output)
}

// loadTrajectoryResult reassembles a stats.ProcessingResult and a dashboard
// history from a trajectory's persisted fixes, markers, and snapshots.
func loadTrajectoryResult(db *sqlite.DB, id uuid.UUID) (sqlite.TrajectoryRecord, stats.ProcessingResult, []report.SnapshotAtTime, error) {
	traj, err := db.GetTrajectory(id)
	if err != nil {
		return sqlite.TrajectoryRecord{}, stats.ProcessingResult{}, nil, fmt.Errorf("get trajectory: %w", err)
	}

	fixRecords, err := db.ListFixes(id)
	if err != nil {
		return sqlite.TrajectoryRecord{}, stats.ProcessingResult{}, nil, fmt.Errorf("list fixes: %w", err)
	}
	markers, err := db.ListMarkers(id)
	if err != nil {
		return sqlite.TrajectoryRecord{}, stats.ProcessingResult{}, nil, fmt.Errorf("list markers: %w", err)
	}
	snapshots, err := db.ListStatsSnapshots(id)
	if err != nil {
		return sqlite.TrajectoryRecord{}, stats.ProcessingResult{}, nil, fmt.Errorf("list snapshots: %w", err)
	}

	result := stats.ProcessingResult{Markers: markers}
	for _, fr := range fixRecords {
		result.OriginalPoints = append(result.OriginalPoints, fr.Fix)
		if fr.Accepted {
			result.ProcessedPoints = append(result.ProcessedPoints, fr.Fix)
		} else {
			result.FilteredPoints = append(result.FilteredPoints, fr.Fix)
		}
	}

	history := make([]report.SnapshotAtTime, len(snapshots))
	for i, s := range snapshots {
		history[i] = report.SnapshotAtTime{TakenAtMs: s.TakenAt, Snapshot: s.Snapshot}
	}
	if len(snapshots) > 0 {
		result.Statistics = snapshots[len(snapshots)-1].Snapshot
	}

	return traj, result, history, nil
}

// latestDashboardData loads the most recently created trajectory for the
// serve subcommand's live dashboard route.
func latestDashboardData(db *sqlite.DB) ([]report.SnapshotAtTime, stats.ProcessingResult, error) {
	id, err := db.LatestTrajectoryID()
	if err != nil {
		return nil, stats.ProcessingResult{}, fmt.Errorf("no trajectory available yet: %w", err)
	}
	_, result, history, err := loadTrajectoryResult(db, id)
	return history, result, err
}
