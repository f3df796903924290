package serialmux

import (
	"strings"

	"github.com/arcfix-nav/driftfilter/internal/adapter"
)

const (
	EventTypeFix     = "fix"
	EventTypeConfig  = "config"
	EventTypeUnknown = "unknown"
)

// ClassifyPayload inspects one line read from a GNSS receiver and returns a
// coarse event type: a fix line in the CSV wire format (spec.md §6:
// `lat,lng,timestamp[,spd,alt,cog]`), a JSON config/ack object the receiver
// echoes back after a command, or unknown.
func ClassifyPayload(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return EventTypeUnknown
	}
	if len(adapter.ParseFromString(trimmed)) == 1 {
		return EventTypeFix
	}
	if strings.HasPrefix(trimmed, "{") {
		return EventTypeConfig
	}
	return EventTypeUnknown
}
