package adapter

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
)

var tokenSplit = regexp.MustCompile(`[,\t;]+|\s+`)

// ParseFromString parses one fix per line: tokens separated by any of
// `, \t ;`, the first two numeric tokens are lat and lng, and an optional
// third token is the timestamp (spec.md §4.4). Blank lines and lines
// starting with `#` or `//` are skipped. A line whose coordinates fall
// outside the valid geodetic range, or that cannot otherwise be parsed, is
// logged and skipped — it never aborts the remaining input.
func ParseFromString(text string) []gpsfix.Fix {
	var fixes []gpsfix.Fix
	now := time.Now()
	index := 0

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		tokens := tokenSplit.Split(line, -1)
		if len(tokens) < 2 {
			log.Printf("adapter: skipping line with too few tokens: %q", line)
			continue
		}

		lat, err := strconv.ParseFloat(tokens[0], 64)
		if err != nil {
			log.Printf("adapter: skipping line with unparseable latitude: %q", line)
			continue
		}
		lng, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			log.Printf("adapter: skipping line with unparseable longitude: %q", line)
			continue
		}

		timeMs := synthesizeTimestamp(now, index)
		if len(tokens) >= 3 {
			ts, err := parseTimestamp(tokens[2])
			if err != nil {
				log.Printf("adapter: skipping line with unparseable timestamp: %q", line)
				continue
			}
			timeMs = ts
		}

		f := gpsfix.Fix{Lat: lat, Lng: lng, TimeMs: timeMs}
		if !f.Valid() {
			log.Printf("adapter: skipping out-of-range fix (%g, %g)", lat, lng)
			continue
		}

		fixes = append(fixes, f)
		index++
	}

	return fixes
}
