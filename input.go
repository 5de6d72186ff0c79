package monitor

import (
	"bufio"
	"errors"
	"io"
)

// ErrInterrupted is returned by a LineSource when the operator aborts the
// prompt (Ctrl-C). The session treats it as a request to stop.
var ErrInterrupted = errors.New("interrupted")

// LineSource yields one line of operator input per call. It returns io.EOF
// when input ends and ErrInterrupted when the operator aborts.
type LineSource interface {
	ReadLine() (string, error)
}

// ScannerSource reads operator input from a plain reader such as a pipe.
type ScannerSource struct {
	scan *bufio.Scanner
}

// NewScannerSource reads lines from r.
func NewScannerSource(r io.Reader) *ScannerSource {
	return &ScannerSource{scan: bufio.NewScanner(r)}
}

// ReadLine returns the next line without its terminator, or io.EOF once r
// is exhausted.
func (s *ScannerSource) ReadLine() (string, error) {
	if s.scan.Scan() {
		return s.scan.Text(), nil
	}
	if err := s.scan.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
