package serialmux

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/arcfix-nav/driftfilter/internal/adapter"
	"github.com/arcfix-nav/driftfilter/internal/drift"
)

// CurrentState holds the latest config values received from the device
// and is intentionally package-level so admin routes or tests can inspect it.
var CurrentState map[string]any

// HandleFix parses payload as a single CSV fix line and applies it to d,
// the detector attached to the serial port's GNSS receiver.
func HandleFix(d drift.Detector, payload string) error {
	fixes := adapter.ParseFromString(payload)
	if len(fixes) == 0 {
		return fmt.Errorf("failed to parse fix line %q", payload)
	}
	decision := d.ProcessFix(fixes[0])
	log.Printf("Fix line: %+v -> %s", fixes[0], decision)
	return nil
}

// HandleConfigResponse merges a JSON config/ack object the receiver sent
// back (e.g. after an update-rate command) into CurrentState.
func HandleConfigResponse(payload string) error {
	var configValues map[string]any

	if err := json.Unmarshal([]byte(payload), &configValues); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %v", err)
	}

	if CurrentState == nil {
		CurrentState = make(map[string]any)
	}
	for k, v := range configValues {
		CurrentState[k] = v
	}

	log.Printf("Config Line: %+v", payload)

	return nil
}

// HandleEvent classifies payload and dispatches it to HandleFix or
// HandleConfigResponse, logging and otherwise ignoring anything unrecognised.
func HandleEvent(d drift.Detector, payload string) error {
	switch ClassifyPayload(payload) {
	case EventTypeFix:
		if err := HandleFix(d, payload); err != nil {
			return fmt.Errorf("failed to handle fix event: %v", err)
		}
	case EventTypeConfig:
		if err := HandleConfigResponse(payload); err != nil {
			return fmt.Errorf("failed to handle config response: %v", err)
		}
	default:
		log.Printf("unknown event type: %s", payload)
	}
	return nil
}
