package gpsserial

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/arcfix-nav/driftfilter/internal/drift"
	"github.com/arcfix-nav/driftfilter/internal/serialmux"
)

// Mode selects which serialmux.SerialMuxInterface implementation backs a
// Reader, mirroring the teacher's --disable-radar/--debug-mode/real-port
// flag trio in cmd/radar.go.
type Mode string

const (
	// ModeDisabled runs with no hardware attached; Run becomes a no-op that
	// blocks until ctx is cancelled.
	ModeDisabled Mode = "disabled"
	// ModeMock replays a single fixed line on a timer, for demos and tests.
	ModeMock Mode = "mock"
	// ModeReal opens a real OS serial device via go.bug.st/serial.
	ModeReal Mode = "real"
)

// Reader reads lines from a GNSS receiver and feeds each one through a
// drift.Detector.
type Reader struct {
	mux      serialmux.SerialMuxInterface
	detector drift.Detector
}

// NewReader constructs a Reader for the given mode. path and opts are only
// consulted in ModeReal; mockLine is only consulted in ModeMock. timezone,
// if non-empty, pins the zone Initialize sends via PMTK_SET_TZ instead of
// the host process's local zone (ModeReal only); pass "" to keep the local
// zone.
func NewReader(mode Mode, path string, opts serialmux.PortOptions, mockLine string, timezone string, detector drift.Detector) (*Reader, error) {
	var mux serialmux.SerialMuxInterface

	switch mode {
	case ModeDisabled:
		mux = serialmux.NewDisabledSerialMux()
	case ModeMock:
		mux = serialmux.NewMockSerialMux([]byte(mockLine))
	case ModeReal:
		realMux, err := serialmux.NewRealSerialMux(path, opts)
		if err != nil {
			return nil, fmt.Errorf("gpsserial: open %s: %w", path, err)
		}
		if timezone != "" {
			if err := realMux.SetTimezone(timezone); err != nil {
				return nil, fmt.Errorf("gpsserial: %w", err)
			}
		}
		mux = realMux
	default:
		return nil, fmt.Errorf("gpsserial: unknown mode %q", mode)
	}

	return &Reader{mux: mux, detector: detector}, nil
}

// Initialize puts the receiver into fix-reporting mode (serialmux.Initialize:
// clock sync, timezone, PMTK output/rate commands).
func (r *Reader) Initialize() error {
	if err := r.mux.Initialize(); err != nil {
		return fmt.Errorf("gpsserial: initialize receiver: %w", err)
	}
	return nil
}

// Run monitors the port and feeds every line it emits through the detector
// until ctx is cancelled. It blocks until both the monitor loop and the
// subscriber loop have returned, matching cmd/radar.go's two-goroutine
// wiring around a single serialmux instance.
func (r *Reader) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	var monitorErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := r.mux.Monitor(ctx); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
			monitorErr = err
			log.Printf("[gpsserial] monitor terminated: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		id, ch := r.mux.Subscribe()
		defer r.mux.Unsubscribe(id)
		for {
			select {
			case payload, ok := <-ch:
				if !ok {
					return
				}
				if err := serialmux.HandleEvent(r.detector, payload); err != nil {
					log.Printf("[gpsserial] error handling event: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	return monitorErr
}

// Close releases the underlying serial resources.
func (r *Reader) Close() error {
	return r.mux.Close()
}
