package serial

import (
	"errors"
	"time"
)

// Defaults applied to unset Config fields.
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 100 * time.Millisecond
)

// ErrClosed is returned by Read and Write once the port has been closed.
var ErrClosed = errors.New("serial port closed")

// Config holds configuration parameters for opening a serial port.
type Config struct {
	Device   string
	BaudRate int
	// ReadTimeout bounds how long Read waits for data. A Read that times out
	// returns 0, nil.
	ReadTimeout time.Duration
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.BaudRate <= 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}
