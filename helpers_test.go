package monitor

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// testPort implements Transport with configurable behaviour for testing.
// Reads on an empty buffer behave like a poll timeout and return 0, nil.
type testPort struct {
	mu sync.Mutex

	readBuf  bytes.Buffer
	written  bytes.Buffer
	readErr  error
	writeErr error

	closed     bool
	closeCalls int
	writeCalls int
}

func newTestPort() *testPort {
	return &testPort{}
}

func (p *testPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, errors.New("serial port closed")
	}
	if p.readErr != nil {
		err := p.readErr
		p.readErr = nil
		p.mu.Unlock()
		return 0, err
	}
	if p.readBuf.Len() == 0 {
		p.mu.Unlock()
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	defer p.mu.Unlock()
	return p.readBuf.Read(b)
}

func (p *testPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeCalls++
	if p.closed {
		return 0, errors.New("serial port closed")
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}

func (p *testPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closeCalls++
	return nil
}

func (p *testPort) AddReadData(data string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readBuf.WriteString(data)
}

func (p *testPort) SetReadError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErr = err
}

func (p *testPort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

func (p *testPort) CloseCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalls
}

func openerFor(t Transport) Opener {
	return func(Config) (Transport, error) { return t, nil }
}

// chanSource is a LineSource fed by the test. Closing lines ends input.
type chanSource struct {
	lines chan string
}

func newChanSource() *chanSource {
	return &chanSource{lines: make(chan string)}
}

func (c *chanSource) ReadLine() (string, error) {
	line, ok := <-c.lines
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

// countingSource replays lines and counts ReadLine calls.
type countingSource struct {
	lines []string
	calls atomic.Int32
}

func (c *countingSource) ReadLine() (string, error) {
	n := int(c.calls.Add(1))
	if n > len(c.lines) {
		return "", io.EOF
	}
	return c.lines[n-1], nil
}

// errSource returns err on the first read.
type errSource struct{ err error }

func (e errSource) ReadLine() (string, error) { return "", e.err }

// shortWriter accepts one byte less than asked.
type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }
