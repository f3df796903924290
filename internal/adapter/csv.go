package adapter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
)

// csvHeaderCandidates are the column names recognised as a header row,
// rather than a data row, for ParseCSV's header-sniffing (spec.md §6:
// `lat,lng,timestamp[,spd,alt,cog]`).
var csvHeaderCandidates = map[string]bool{"lat": true, "latitude": true}

// ParseCSV reads fixes from r using the header format of spec.md §6. If
// the first row's first column is exactly "lat" or "latitude", it is
// treated as a header and skipped; otherwise every row is parsed as data. Extra columns
// (spd, alt, cog) are accepted but ignored — the detector never consults
// them (spec.md Non-goals).
func ParseCSV(r io.Reader) ([]gpsfix.Fix, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("adapter: failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	start := 0
	if len(rows[0]) > 0 && csvHeaderCandidates[rows[0][0]] {
		start = 1
	}

	var fixes []gpsfix.Fix
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 {
			log.Printf("adapter: skipping CSV row %d with too few columns", i)
			continue
		}
		lat, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			log.Printf("adapter: skipping CSV row %d with unparseable latitude: %v", i, err)
			continue
		}
		lng, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			log.Printf("adapter: skipping CSV row %d with unparseable longitude: %v", i, err)
			continue
		}

		var timeMs int64
		if len(row) >= 3 && row[2] != "" {
			timeMs, err = parseTimestamp(row[2])
			if err != nil {
				log.Printf("adapter: skipping CSV row %d with unparseable timestamp: %v", i, err)
				continue
			}
		}

		f := gpsfix.Fix{Lat: lat, Lng: lng, TimeMs: timeMs}
		if !f.Valid() {
			log.Printf("adapter: skipping out-of-range CSV row %d (%g, %g)", i, lat, lng)
			continue
		}
		fixes = append(fixes, f)
	}
	return fixes, nil
}

// WriteCSV writes fixes to w using the canonical header
// `lat,lng,timestamp`.
func WriteCSV(w io.Writer, fixes []gpsfix.Fix) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"lat", "lng", "timestamp"}); err != nil {
		return fmt.Errorf("adapter: failed to write CSV header: %w", err)
	}
	for _, f := range fixes {
		row := []string{
			strconv.FormatFloat(f.Lat, 'f', -1, 64),
			strconv.FormatFloat(f.Lng, 'f', -1, 64),
			strconv.FormatInt(f.TimeMs, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("adapter: failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
