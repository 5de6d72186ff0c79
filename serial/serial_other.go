//go:build !linux

package serial

import (
	"errors"
	"fmt"
	"sync"

	bugst "go.bug.st/serial"
)

// Port wraps a go.bug.st/serial port with the same Read semantics as the
// Linux backend: a Read that times out returns 0, nil.
type Port struct {
	port      bugst.Port
	config    Config
	done      chan struct{}
	closeOnce sync.Once
}

// Open opens the serial port described by cfg.
func Open(cfg Config) (*Port, error) {
	cfg = cfg.withDefaults()

	mode := &bugst.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	port, err := bugst.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	return &Port{
		port:   port,
		config: cfg,
		done:   make(chan struct{}),
	}, nil
}

// Read reads what is available into p, waiting up to the configured
// ReadTimeout. It returns 0, nil when the timeout expires and ErrClosed once
// the port has been closed.
func (s *Port) Read(p []byte) (int, error) {
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}
	n, err := s.port.Read(p)
	if err != nil {
		var pe *bugst.PortError
		if errors.As(err, &pe) && pe.Code() == bugst.PortClosed {
			return n, ErrClosed
		}
	}
	return n, err
}

// Write writes p to the serial port.
func (s *Port) Write(p []byte) (int, error) {
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}
	return s.port.Write(p)
}

// WriteLine writes a line (with specified newline) to the serial port.
func (s *Port) WriteLine(line string, newline string) error {
	_, err := s.Write([]byte(line + newline))
	return err
}

// Name returns the device path the port was opened with.
func (s *Port) Name() string {
	return s.config.Device
}

// Close closes the port. Safe to call multiple times.
func (s *Port) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.port.Close()
	})
	return err
}
