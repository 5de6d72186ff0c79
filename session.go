package monitor

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luhtfiimanal/rocketmon/serial"
)

// Defaults applied by Config.Normalize.
const (
	DefaultBaudRate      = serial.DefaultBaudRate
	DefaultReadTimeout   = serial.DefaultReadTimeout
	DefaultMaxLineLength = 64 * 1024
)

var (
	// ErrOpen wraps failures to open the transport.
	ErrOpen = errors.New("could not open port")
	// ErrLink wraps transport failures during a running session.
	ErrLink = errors.New("link failed")
)

// Config describes which gateway port to open and how.
type Config struct {
	Port          string
	BaudRate      int
	ReadTimeout   time.Duration
	MaxLineLength int
}

// Normalize validates the config and applies defaults for any unset values.
func (c Config) Normalize() (Config, error) {
	if c.Port == "" {
		return c, errors.New("port is required")
	}
	if c.BaudRate <= 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.MaxLineLength <= 0 {
		c.MaxLineLength = DefaultMaxLineLength
	}
	return c, nil
}

// Transport is the byte stream to the gateway. Read must return within a
// short timeout (0, nil when idle) and may run concurrently with Write.
type Transport interface {
	io.ReadWriteCloser
}

// Opener opens the transport for a session. Tests replace it to inject a
// fake port.
type Opener func(cfg Config) (Transport, error)

// SerialOpener opens cfg.Port as a real serial device.
func SerialOpener(cfg Config) (Transport, error) {
	port, err := serial.Open(serial.Config{
		Device:      cfg.Port,
		BaudRate:    cfg.BaudRate,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Stats is a snapshot of the telemetry observed during a session.
type Stats struct {
	Packets     int
	RSSI        int
	SNR         int
	State       string
	Altitude    float64
	MaxAltitude float64
}

// Tracker holds the running Stats. The reader goroutine records telemetry
// while the command loop takes snapshots.
type Tracker struct {
	mu    sync.Mutex
	stats Stats
}

// RecordTelemetry counts one telemetry packet and updates the last-seen
// values. The maximum altitude only ever rises.
func (t *Tracker) RecordTelemetry(rssi, snr int, state string, alt float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Packets++
	t.stats.RSSI = rssi
	t.stats.SNR = snr
	t.stats.State = state
	t.stats.Altitude = alt
	if alt > t.stats.MaxAltitude {
		t.stats.MaxAltitude = alt
	}
}

// Snapshot returns a copy of the current statistics.
func (t *Tracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Session is one connection to the gateway, from open to close.
type Session struct {
	cfg     Config
	open    Opener
	console *Console
	tracker *Tracker

	transport Transport
	sender    *CommandSender
	live      atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewSession creates a disconnected session. Output for the operator goes to
// out.
func NewSession(cfg Config, open Opener, out io.Writer) *Session {
	if open == nil {
		open = SerialOpener
	}
	return &Session{
		cfg:     cfg,
		open:    open,
		console: NewConsole(out),
		tracker: &Tracker{},
	}
}

// Live reports whether the session is connected and running.
func (s *Session) Live() bool {
	return s.live.Load()
}

// Stats returns a snapshot of the session statistics.
func (s *Session) Stats() Stats {
	return s.tracker.Snapshot()
}

// Connect opens the transport. On failure the session stays disconnected.
func (s *Session) Connect() error {
	cfg, err := s.cfg.Normalize()
	if err != nil {
		return err
	}
	s.cfg = cfg

	t, err := s.open(cfg)
	if err != nil {
		s.console.Printf("Error: Could not open %s: %v\n", cfg.Port, err)
		return fmt.Errorf("%w %s: %w", ErrOpen, cfg.Port, err)
	}
	s.transport = t
	s.sender = NewCommandSender(t, s.console)
	s.live.Store(true)
	s.console.Printf("Connected to %s at %d baud\n", cfg.Port, cfg.BaudRate)
	return nil
}

// disconnect clears the live flag and closes the transport exactly once.
func (s *Session) disconnect() error {
	s.closeOnce.Do(func() {
		s.live.Store(false)
		if s.transport == nil {
			return
		}
		s.closeErr = s.transport.Close()
		s.console.Println("Disconnected")
	})
	return s.closeErr
}

// PrintStats writes the statistics block to the console.
func (s *Session) PrintStats() {
	st := s.Stats()
	s.console.Printf("\n=== Statistics ===\n"+
		"Telemetry packets received: %d\n"+
		"Last RSSI: %d dBm\n"+
		"Last SNR: %d dB\n"+
		"Last state: %s\n"+
		"Last altitude: %.2f m\n"+
		"Max altitude: %.2f m\n"+
		"==================\n\n",
		st.Packets, st.RSSI, st.SNR, st.State, st.Altitude, st.MaxAltitude)
}
