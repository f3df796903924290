package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/arcfix-nav/driftfilter/internal/adapter"
	"github.com/arcfix-nav/driftfilter/internal/config"
	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/security"
	"github.com/arcfix-nav/driftfilter/internal/simulate"
)

// simulateMarkerWire is a ground-truth marker in the same collapsed
// wire-kind form adapter.ExportToJSON uses for detector-observed markers.
type simulateMarkerWire struct {
	Kind        string     `json:"kind"`
	Position    gpsfix.Fix `json:"position"`
	Description string     `json:"description"`
	TimeMs      int64      `json:"timestamp"`
}

// simulateWireResult is the JSON shape written by -output: the corrupted
// trajectory plus the ground-truth markers describing what was injected.
type simulateWireResult struct {
	Points  []gpsfix.Fix         `json:"points"`
	Markers []simulateMarkerWire `json:"markers"`
}

// runSimulate corrupts a clean baseline trajectory with synthetic anomalies
// (spec.md §4.3), for building a detector test corpus with known ground
// truth.
func runSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	baseline := fs.String("baseline", "", "path to a clean baseline trajectory (text format, required)")
	configFile := fs.String("config", config.DefaultSimulatorConfigPath, "path to simulator tuning JSON")
	seed := fs.Int64("seed", time.Now().UnixNano(), "PRNG seed; defaults to the current time, so runs differ unless it is set")
	output := fs.String("output", "", "path to write the corrupted trajectory as JSON (defaults to stdout)")
	fs.Parse(args)

	if *baseline == "" {
		log.Fatal("simulate: -baseline is required")
	}

	raw, err := os.ReadFile(*baseline)
	if err != nil {
		log.Fatalf("simulate: failed to read %s: %v", *baseline, err)
	}
	points := adapter.ParseFromString(string(raw))
	log.Printf("[simulate] loaded %d baseline fixes from %s", len(points), *baseline)

	tuning, err := config.LoadSimulatorTuning(*configFile)
	if err != nil {
		log.Fatalf("simulate: failed to load simulator config from %s: %v", *configFile, err)
	}

	sim := simulate.New(simulate.NewConfig(tuning), rand.New(rand.NewSource(*seed)))
	result := sim.Simulate(points)

	log.Printf("[simulate] seed=%d injected %d markers over %d points", *seed, len(result.Markers), len(result.Points))

	wire := simulateWireResult{Points: result.Points}
	for _, m := range result.Markers {
		wire.Markers = append(wire.Markers, simulateMarkerWire{
			Kind:        m.Kind.WireKind(),
			Position:    m.Position,
			Description: m.Description,
			TimeMs:      m.TimeMs,
		})
	}

	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		log.Fatalf("simulate: failed to serialize result: %v", err)
	}

	if *output == "" {
		os.Stdout.Write(data)
		fmt.Println()
		return
	}
	if err := security.ValidateExportPath(*output); err != nil {
		log.Fatalf("simulate: refusing to write %s: %v", *output, err)
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		log.Fatalf("simulate: failed to write %s: %v", *output, err)
	}
	log.Printf("[simulate] wrote result to %s", *output)
}
