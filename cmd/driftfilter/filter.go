package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/arcfix-nav/driftfilter/internal/adapter"
	"github.com/arcfix-nav/driftfilter/internal/config"
	"github.com/arcfix-nav/driftfilter/internal/drift"
	"github.com/arcfix-nav/driftfilter/internal/fsutil"
	"github.com/arcfix-nav/driftfilter/internal/geo"
	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/security"
	"github.com/arcfix-nav/driftfilter/internal/stats"
	"github.com/arcfix-nav/driftfilter/internal/storage/sqlite"
	"github.com/arcfix-nav/driftfilter/internal/timeutil"
	"github.com/arcfix-nav/driftfilter/internal/units"
)

// runFilter batch-processes a trajectory file through the drift detector
// and writes the canonical wire-format result (spec.md §6) to stdout or
// -output, mirroring the teacher's fixture-replay path in cmd/radar.go
// but for a file instead of a serial line.
func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	input := fs.String("input", "", "path to the trajectory file to filter (required)")
	format := fs.String("format", "text", "input format: text, csv, or json")
	configFile := fs.String("config", config.DefaultDetectorConfigPath, "path to detector tuning JSON")
	output := fs.String("output", "", "path to write the JSON result (defaults to stdout)")
	dbPath := fs.String("db-path", "", "optional sqlite path to persist the trajectory")
	trajName := fs.String("name", "filter-run", "trajectory name recorded in -db-path")
	speedUnits := fs.String("speed-units", units.MPS, "units for the logged average speed: "+units.GetValidUnitsString())
	fs.Parse(args)

	if !units.IsValid(*speedUnits) {
		log.Fatalf("filter: invalid -speed-units %q: expected %s", *speedUnits, units.GetValidUnitsString())
	}

	if *input == "" {
		log.Fatal("filter: -input is required")
	}

	fsys := fsutil.OSFileSystem{}
	fixes, err := loadTrajectoryFixes(fsys, *input, *format)
	if err != nil {
		log.Fatalf("filter: %v", err)
	}
	log.Printf("[filter] loaded %d fixes from %s (%s)", len(fixes), *input, *format)

	tuning, err := config.LoadDetectorTuning(*configFile)
	if err != nil {
		log.Fatalf("filter: failed to load detector config from %s: %v", *configFile, err)
	}

	core := drift.NewCore(drift.NewConfig(tuning))
	result := core.ProcessTrajectory(fixes)

	log.Printf("[filter] accepted=%d rejected=%d rate=%.3f",
		result.Statistics.AcceptedCount, result.Statistics.RejectedCount, result.Statistics.FilteringRate)
	if avg, ok := averageSpeedMPS(result.ProcessedPoints); ok {
		log.Printf("[filter] average speed: %.2f %s", units.ConvertSpeed(avg, *speedUnits), *speedUnits)
	}

	wire, err := adapter.ExportToJSON(result)
	if err != nil {
		log.Fatalf("filter: failed to serialize result: %v", err)
	}

	if *output == "" {
		os.Stdout.Write(wire)
		fmt.Println()
	} else {
		if err := security.ValidateExportPath(*output); err != nil {
			log.Fatalf("filter: refusing to write %s: %v", *output, err)
		}
		if err := fsys.WriteFile(*output, wire, 0644); err != nil {
			log.Fatalf("filter: failed to write %s: %v", *output, err)
		}
		log.Printf("[filter] wrote result to %s", *output)
	}

	if *dbPath != "" {
		persistProcessingResult(timeutil.RealClock{}, *dbPath, *trajName, *input, result)
	}
}

// averageSpeedMPS estimates mean ground speed in metres/second across a
// sequence of accepted fixes, from consecutive great-circle distances over
// elapsed time. Reports ok=false for fewer than two points or zero elapsed
// time (can't estimate a rate from a single instant).
func averageSpeedMPS(points []gpsfix.Fix) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	var totalDist float64
	for i := 1; i < len(points); i++ {
		a := geo.Point{Lat: points[i-1].Lat, Lng: points[i-1].Lng}
		b := geo.Point{Lat: points[i].Lat, Lng: points[i].Lng}
		totalDist += geo.Distance(a, b)
	}
	elapsedMs := points[len(points)-1].TimeMs - points[0].TimeMs
	if elapsedMs <= 0 {
		return 0, false
	}
	return totalDist / (float64(elapsedMs) / 1000.0), true
}

// loadTrajectoryFixes reads path through fsys and parses it per format,
// split out of runFilter so tests can swap in fsutil.NewMemoryFileSystem
// instead of touching real disk.
func loadTrajectoryFixes(fsys fsutil.FileSystem, path, format string) ([]gpsfix.Fix, error) {
	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseFixes(raw, format)
}

// parseFixes dispatches to the adapter matching -format.
func parseFixes(raw []byte, format string) ([]gpsfix.Fix, error) {
	switch format {
	case "text":
		return adapter.ParseFromString(string(raw)), nil
	case "csv":
		return adapter.ParseCSV(bytes.NewReader(raw))
	case "json":
		return adapter.LoadFromJSON(raw)
	default:
		return nil, fmt.Errorf("unsupported -format %q: expected text, csv, or json", format)
	}
}

// persistProcessingResult writes a completed run to a sqlite store for
// -db-path on filter. clock is a timeutil.Clock rather than a direct
// time.Now() call so tests can pin the recorded creation/snapshot
// timestamp with timeutil.NewMockClock.
func persistProcessingResult(clock timeutil.Clock, dbPath, name, source string, result stats.ProcessingResult) {
	db, err := sqlite.OpenAndMigrate(dbPath)
	if err != nil {
		log.Printf("[filter] failed to open %s: %v", dbPath, err)
		return
	}
	defer db.Close()

	now := clock.Now().UnixMilli()
	id, err := db.SaveProcessingResult(name, source, now, result, now)
	if err != nil {
		log.Printf("[filter] failed to persist trajectory: %v", err)
		return
	}
	log.Printf("[filter] persisted trajectory %s to %s", id, dbPath)
}
