// Package serialmux provides an abstraction over a serial port with the
// ability for multiple clients to subscribe to the lines it emits and to
// send commands to the single underlying device.
package serialmux

import (
	"bufio"
	"bytes"
	crand "crypto/rand"
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/arcfix-nav/driftfilter/internal/units"
)

var ErrWriteFailed = fmt.Errorf("failed to write to serial port")

// SerialMux is a generic serial port multiplexer that allows multiple clients
// to subscribe to lines read from a single serial port.
type SerialMux[T SerialPorter] struct {
	port         T
	subscribers  map[string]chan string
	subscriberMu sync.Mutex
	commandMu    sync.Mutex
	closing      bool
	closingMu    sync.Mutex
	timezone     string
}

// SerialMuxInterface defines the interface for the SerialMux type.
type SerialMuxInterface interface {
	// Subscribe creates a new channel for receiving line events from the serial
	// port. The channel ID is used to identify the unique channel when
	// unsubscribing.
	Subscribe() (string, chan string)
	// Unsubscribe removes a channel from the list of subscribers.
	Unsubscribe(string)
	// SendCommand writes the provided command to the serial port.
	SendCommand(string) error
	// Monitor reads lines from the serial port and sends them to the
	// appropriate channels.
	Monitor(context.Context) error
	// Close closes all subscribed channels and closes the serial port.
	Close() error

	Initialize() error
}

// NewSerialMux creates a SerialMux instance backed by a serial port at the
// given path.
func NewSerialMux[T SerialPorter](port T) *SerialMux[T] {
	return &SerialMux[T]{
		port:        port,
		subscribers: make(map[string]chan string),
	}
}

// resolveTimezone returns the zone abbreviation and UTC offset (seconds)
// Initialize sends in PMTK_SET_TZ: the pinned timezone (via SetTimezone) if
// one was set, otherwise the host process's local zone.
func (s *SerialMux[T]) resolveTimezone() (string, int, error) {
	if s.timezone == "" {
		name, offset := time.Now().Local().Zone()
		return name, offset, nil
	}
	converted, err := units.ConvertTime(time.Now().UTC(), s.timezone)
	if err != nil {
		return "", 0, err
	}
	name, offset := converted.Zone()
	return name, offset, nil
}

// SetTimezone pins the timezone Initialize sends via PMTK_SET_TZ, instead
// of the host process's local zone. tz must name a zone the tz database
// recognizes.
func (s *SerialMux[T]) SetTimezone(tz string) error {
	if !units.IsTimezoneValid(tz) {
		return fmt.Errorf("invalid timezone %q (see units.GetValidTimezonesString for examples)", tz)
	}
	s.timezone = tz
	return nil
}

// randomID generates a random channel ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

func (s *SerialMux[T]) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string)
	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	s.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber from the serial mux.
func (s *SerialMux[T]) Unsubscribe(id string) {
	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
}

// Initialize syncs the clock and TZ offset to the GNSS receiver and puts it
// into the fix-reporting mode this package's parser understands. Command
// strings follow the PMTK convention MediaTek GPS chipsets use for
// proprietary sentences.
func (s *SerialMux[T]) Initialize() error {
	command := fmt.Sprintf("PMTK_SET_TIME,%d", time.Now().Unix())
	if err := s.SendCommand(command); err != nil {
		return fmt.Errorf("failed to synchronize clock: %w", err)
	}

	tzName, tzOffsetSeconds, err := s.resolveTimezone()
	if err != nil {
		return fmt.Errorf("failed to resolve timezone: %w", err)
	}
	command = fmt.Sprintf("PMTK_SET_TZ,%s,%d", tzName, tzOffsetSeconds/60/60)
	if err := s.SendCommand(command); err != nil {
		return fmt.Errorf("failed to set timezone: %w", err)
	}

	for _, command := range []string{
		"PMTK_SET_NMEA_OUTPUT=CSV", // emit lat,lng,timestamp lines instead of raw NMEA
		"PMTK_SET_FIX_RATE=5",      // 5 Hz fix reporting
		"PMTK_API_SET_FIX_CTL=1",   // enable continuous fix mode
	} {
		if err := s.SendCommand(command); err != nil {
			return fmt.Errorf("failed to send start command %q: %w", command, err)
		}
	}

	return nil
}

// SendCommand sends a command to the serial port.
func (s *SerialMux[T]) SendCommand(command string) error {
	s.commandMu.Lock()
	defer s.commandMu.Unlock()
	if !bytes.HasSuffix([]byte(command), []byte("\n")) {
		command += "\n" // ensure command ends with a newline
	}
	n, err := s.port.Write([]byte(command))
	if err != nil {
		return err
	}
	if n != len(command) {
		return ErrWriteFailed
	}
	return nil
}

// Monitor monitors the serial port for lines and sends them to subscribers.
func (s *SerialMux[T]) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(s.port)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// start a goroutine to read from the serial port & send any lines that are scanned to linesChan.
	// and any errors to the scanErrChan
	//
	// the blocking scan.Scan will not interfere with our outer loop awaiting
	// lines & context cancellation.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			return err

		case line, ok := <-lineChan:
			if !ok {
				if err := scan.Err(); err != nil {
					return err
				}
				return nil
			}

			s.closingMu.Lock()
			if s.closing {
				s.closingMu.Unlock()
				return nil
			}
			s.closingMu.Unlock()

			s.subscriberMu.Lock()
			for _, ch := range s.subscribers {
				select {
				case ch <- line:
				default:
					// if the channel is full/blocking skip so as not to block the outer loop
				}
			}
			s.subscriberMu.Unlock()
		}
	}
}

func (s *SerialMux[T]) Close() error {
	s.closingMu.Lock()
	s.closing = true
	s.closingMu.Unlock()

	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	return s.port.Close()
}
