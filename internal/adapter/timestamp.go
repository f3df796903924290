package adapter

import (
	"fmt"
	"strconv"
	"time"
)

// epochSecondsLowerBound/UpperBound bound the range of Unix-seconds values
// parseTimestamp treats as seconds rather than milliseconds (spec.md
// §4.4): 946684800 is 2000-01-01T00:00:00Z.
const (
	epochSecondsLowerBound = 946684800
	epochSecondsUpperBound = 946684800000
)

// civilLayouts are the datetime formats parseTimestamp tries, in order,
// for a string token that isn't purely numeric.
var civilLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses a timestamp token into milliseconds since the
// epoch. A purely numeric token is treated as seconds if it falls in
// [946684800, 946684800000), otherwise milliseconds. A non-numeric token is
// tried against each of civilLayouts in turn.
func parseTimestamp(token string) (int64, error) {
	if n, err := strconv.ParseFloat(token, 64); err == nil {
		if n >= epochSecondsLowerBound && n < epochSecondsUpperBound {
			return int64(n * 1000), nil
		}
		return int64(n), nil
	}

	for _, layout := range civilLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("adapter: %q is not a recognised timestamp", token)
}

// synthesizeTimestamp produces a placeholder timestamp for a record with no
// timestamp field, per spec.md §4.4: now() + index*1000ms.
func synthesizeTimestamp(now time.Time, index int) int64 {
	return now.UnixMilli() + int64(index)*1000
}
