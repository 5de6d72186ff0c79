package monitor

import (
	"bytes"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// FrameReader splits a byte stream into newline-terminated text lines.
// Chunk boundaries do not affect the lines produced.
type FrameReader struct {
	r      io.Reader
	handle func(line string)
	buf    []byte

	// set once an oversize line was dropped, until its newline arrives
	discarding bool

	// MaxLineLength caps a partial line still waiting for its newline.
	// Beyond it the whole line is discarded, including the bytes that arrive
	// later up to its newline. Zero means no limit.
	MaxLineLength int
}

// NewFrameReader returns a FrameReader that reads from r and calls handle
// for every complete, non-empty line.
func NewFrameReader(r io.Reader, handle func(line string)) *FrameReader {
	return &FrameReader{
		r:             r,
		handle:        handle,
		MaxLineLength: DefaultMaxLineLength,
	}
}

// Write feeds raw bytes into the reader as if they had been read from the
// transport. It never fails.
func (f *FrameReader) Write(p []byte) (int, error) {
	n := len(p)
	if f.discarding {
		idx := bytes.IndexByte(p, '\n')
		if idx < 0 {
			return n, nil
		}
		f.discarding = false
		p = p[idx+1:]
	}

	f.buf = append(f.buf, p...)
	for {
		idx := bytes.IndexByte(f.buf, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimSpace(strings.ToValidUTF8(string(f.buf[:idx]), ""))
		f.buf = f.buf[idx+1:]
		if line != "" {
			f.handle(line)
		}
	}
	if f.MaxLineLength > 0 && len(f.buf) > f.MaxLineLength {
		log.Warnf("discarding %d bytes without newline", len(f.buf))
		f.buf = nil
		f.discarding = true
	}
	if len(f.buf) == 0 {
		// release the backing array of consumed lines
		f.buf = nil
	}
	return n, nil
}

// Run polls the transport until live reports false. An error while live
// stops the loop and is returned; an error after shutdown was requested is
// swallowed.
func (f *FrameReader) Run(live func() bool) error {
	chunk := make([]byte, 4096)
	for live() {
		n, err := f.r.Read(chunk)
		if n > 0 {
			log.Tracef("R << %q", chunk[:n])
			f.Write(chunk[:n])
		}
		if err != nil {
			if !live() {
				return nil
			}
			return err
		}
	}
	return nil
}
