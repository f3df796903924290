package adapter

// Field-name fallback lists (spec.md §4.4): for a loosely-typed candidate
// object, the first present key in each list supplies that Fix field.
var (
	latKeys  = []string{"lat", "latitude", "latitude1", "y"}
	lngKeys  = []string{"lng", "lon", "longitude", "longitude1", "x"}
	timeKeys = []string{"timestamp", "time", "currentTime", "date", "datetime"}
)

func extract(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func extractFloat(m map[string]any, keys []string) (float64, bool) {
	v, ok := extract(m, keys)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
