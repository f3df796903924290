package adapter

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/stats"
)

// topLevelArrayKeys are tried, in order, when the JSON document's root is
// an object rather than an array (spec.md §4.4).
var topLevelArrayKeys = []string{"points", "data", "locations", "coordinates", "trajectory", "path"}

// LoadFromJSON accepts either a JSON array of fix-like objects, or a JSON
// object containing such an array under one of topLevelArrayKeys, falling
// back to data[0].locations and data[0].section.locations when no
// top-level array is found. Each candidate object's lat/lng/timestamp are
// resolved via the field-name fallback lists in fields.go; a candidate
// missing lat or lng, or whose coordinates are out of range, is logged and
// discarded.
func LoadFromJSON(raw []byte) ([]gpsfix.Fix, error) {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("adapter: invalid JSON: %w", err)
	}

	candidates, err := extractCandidateArray(root)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fixes := make([]gpsfix.Fix, 0, len(candidates))
	for i, c := range candidates {
		m, ok := c.(map[string]any)
		if !ok {
			log.Printf("adapter: skipping non-object candidate at index %d", i)
			continue
		}
		f, ok := fixFromCandidate(m, now, i)
		if !ok {
			continue
		}
		fixes = append(fixes, f)
	}
	return fixes, nil
}

func extractCandidateArray(root any) ([]any, error) {
	if arr, ok := root.([]any); ok {
		return arr, nil
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("adapter: JSON root must be an array or object")
	}

	for _, key := range topLevelArrayKeys {
		if v, ok := obj[key]; ok {
			if arr, ok := v.([]any); ok {
				if key == "data" && len(arr) > 0 {
					if entry, ok := arr[0].(map[string]any); ok && (entry["locations"] != nil || entry["section"] != nil) {
						continue
					}
				}
				return arr, nil
			}
		}
	}

	if data, ok := obj["data"].([]any); ok && len(data) > 0 {
		if entry, ok := data[0].(map[string]any); ok {
			if locs, ok := entry["locations"].([]any); ok {
				return locs, nil
			}
			if section, ok := entry["section"].(map[string]any); ok {
				if locs, ok := section["locations"].([]any); ok {
					return locs, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("adapter: no recognised fix array found in JSON object")
}

func fixFromCandidate(m map[string]any, now time.Time, index int) (gpsfix.Fix, bool) {
	lat, ok := extractFloat(m, latKeys)
	if !ok {
		log.Printf("adapter: skipping candidate %d with no latitude field", index)
		return gpsfix.Fix{}, false
	}
	lng, ok := extractFloat(m, lngKeys)
	if !ok {
		log.Printf("adapter: skipping candidate %d with no longitude field", index)
		return gpsfix.Fix{}, false
	}

	timeMs := synthesizeTimestamp(now, index)
	if raw, ok := extract(m, timeKeys); ok {
		if parsed, ok := resolveTimestampValue(raw); ok {
			timeMs = parsed
		}
	}

	f := gpsfix.Fix{Lat: lat, Lng: lng, TimeMs: timeMs}
	if !f.Valid() {
		log.Printf("adapter: skipping out-of-range candidate %d (%g, %g)", index, lat, lng)
		return gpsfix.Fix{}, false
	}
	return f, true
}

func resolveTimestampValue(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		if v >= epochSecondsLowerBound && v < epochSecondsUpperBound {
			return int64(v * 1000), true
		}
		return int64(v), true
	case string:
		if ms, err := parseTimestamp(v); err == nil {
			return ms, true
		}
	}
	return 0, false
}

// ExportToJSON serializes a stats.ProcessingResult to the canonical wire
// format (spec.md §6), collapsing each marker's kind to its wire form.
func ExportToJSON(result stats.ProcessingResult) ([]byte, error) {
	wire := struct {
		OriginalPoints  []gpsfix.Fix     `json:"originalPoints"`
		ProcessedPoints []gpsfix.Fix     `json:"processedPoints"`
		FilteredPoints  []gpsfix.Fix     `json:"filteredPoints"`
		Statistics      stats.Snapshot   `json:"statistics"`
		Markers         []wireMarker     `json:"markers"`
	}{
		OriginalPoints:  result.OriginalPoints,
		ProcessedPoints: result.ProcessedPoints,
		FilteredPoints:  result.FilteredPoints,
		Statistics:      result.Statistics,
	}
	for _, m := range result.Markers {
		wire.Markers = append(wire.Markers, wireMarker{
			Kind:        m.Kind.WireKind(),
			Position:    m.Position,
			Description: m.Description,
			TimeMs:      m.TimeMs,
		})
	}
	return json.Marshal(wire)
}

type wireMarker struct {
	Kind        string     `json:"kind"`
	Position    gpsfix.Fix `json:"position"`
	Description string     `json:"description"`
	TimeMs      int64      `json:"t"`
}
