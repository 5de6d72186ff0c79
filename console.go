package monitor

import (
	"fmt"
	"io"
	"sync"
)

// Console serializes operator-facing output from the reader goroutine and the
// command loop so records never interleave mid-line.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a Console writing to out, or discarding output if out
// is nil.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = io.Discard
	}
	return &Console{out: out}
}

// Printf writes a formatted message as-is.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Println writes the operands followed by a newline.
func (c *Console) Println(args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, args...)
}
