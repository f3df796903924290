package stats

import "github.com/arcfix-nav/driftfilter/internal/gpsfix"

func fixAt(lat, lng float64, timeMs int64) gpsfix.Fix {
	return gpsfix.Fix{Lat: lat, Lng: lng, TimeMs: timeMs}
}
