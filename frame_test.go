package monitor

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect(f *FrameReader) *[]string {
	var lines []string
	f.handle = func(line string) { lines = append(lines, line) }
	return &lines
}

// expectedLines is the reference framing: newline-separated, trimmed, empty
// lines dropped, trailing partial line held back.
func expectedLines(input string) []string {
	parts := strings.Split(input, "\n")
	var out []string
	for _, p := range parts[:len(parts)-1] {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func TestFrameReader_ChunkBoundaries(t *testing.T) {
	input := "{\"type\":\"link\",\"connected\":true}\n" +
		"\n" +
		"   \r\n" +
		"  padded line  \r\n" +
		"{\"type\":\"tel\",\"state\":\"ÄSCENT\",\"alt\":1.5}\n" +
		"héllo wörld ✓\n" +
		"trailing partial"

	want := expectedLines(input)
	require.Len(t, want, 4)

	for size := 1; size <= len(input); size++ {
		f := NewFrameReader(nil, nil)
		got := collect(f)
		data := []byte(input)
		for len(data) > 0 {
			n := min(size, len(data))
			f.Write(data[:n])
			data = data[n:]
		}
		require.Equal(t, want, *got, "chunk size %d", size)
	}
}

func TestFrameReader_RetainsRemainder(t *testing.T) {
	f := NewFrameReader(nil, nil)
	got := collect(f)

	f.Write([]byte(`{"type":"ack",`))
	require.Empty(t, *got)

	f.Write([]byte(`"cmd":"arm","ok":true}` + "\n" + `{"type"`))
	require.Equal(t, []string{`{"type":"ack","cmd":"arm","ok":true}`}, *got)

	f.Write([]byte(`:"link"}` + "\n"))
	require.Equal(t, []string{`{"type":"ack","cmd":"arm","ok":true}`, `{"type":"link"}`}, *got)
}

func TestFrameReader_DropsInvalidUTF8(t *testing.T) {
	f := NewFrameReader(nil, nil)
	got := collect(f)

	f.Write([]byte("ab\xff\xfecd\n"))
	require.Equal(t, []string{"abcd"}, *got)
}

func TestFrameReader_MaxLineLength(t *testing.T) {
	f := NewFrameReader(nil, nil)
	f.MaxLineLength = 8
	got := collect(f)

	f.Write([]byte("0123456789"))
	f.Write([]byte("abc\nok\n"))
	require.Equal(t, []string{"ok"}, *got)
}

func TestFrameReader_OversizeLineTailDropped(t *testing.T) {
	f := NewFrameReader(nil, nil)
	f.MaxLineLength = 16
	got := collect(f)

	msg := `{"type":"ack","cmd":"xxxxxxxxxxxxxxxxxxxx"}`
	f.Write([]byte(msg[:25]))
	require.Empty(t, *got)

	// the tail spans several chunks before its newline shows up
	f.Write([]byte(msg[25:30]))
	f.Write([]byte(msg[30:] + "\n" + `{"type":"link"}` + "\n"))
	require.Equal(t, []string{`{"type":"link"}`}, *got)

	f.Write([]byte("next\n"))
	require.Equal(t, []string{`{"type":"link"}`, "next"}, *got)
}

func TestFrameReader_RunStopsWhenNotLive(t *testing.T) {
	port := newTestPort()
	port.AddReadData("one\ntwo\n")

	var live atomic.Bool
	live.Store(true)

	lines := make(chan string, 4)
	f := NewFrameReader(port, func(line string) { lines <- line })

	done := make(chan error, 1)
	go func() { done <- f.Run(live.Load) }()

	require.Equal(t, "one", <-lines)
	require.Equal(t, "two", <-lines)

	live.Store(false)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reader did not stop after live flag cleared")
	}
}

func TestFrameReader_RunReturnsErrorWhileLive(t *testing.T) {
	port := newTestPort()
	port.SetReadError(errors.New("device gone"))

	f := NewFrameReader(port, func(string) {})
	err := f.Run(func() bool { return true })
	require.EqualError(t, err, "device gone")
}

func TestFrameReader_RunSuppressesErrorAfterShutdown(t *testing.T) {
	port := newTestPort()

	var live atomic.Bool
	live.Store(true)

	f := NewFrameReader(port, func(string) {})
	done := make(chan error, 1)
	go func() { done <- f.Run(live.Load) }()

	// shutdown order of the session: clear the flag, then close
	live.Store(false)
	port.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reader did not stop after close")
	}
}
