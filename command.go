package monitor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"unicode/utf16"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

// ErrShortWrite is returned when the transport accepted only part of a
// command line.
var ErrShortWrite = errors.New("short write to transport")

// Gateway commands accepted by the firmware.
const (
	CmdArm      = "arm"
	CmdDisarm   = "disarm"
	CmdStatus   = "status"
	CmdDownload = "download"
	CmdReset    = "reset"
	CmdPing     = "ping"
)

// CommandSender writes numbered commands to the gateway.
type CommandSender struct {
	w       io.Writer
	console *Console
	lastID  atomic.Int64
}

// NewCommandSender returns a CommandSender writing to w. Sent commands are
// echoed to console; a nil console discards the echo.
func NewCommandSender(w io.Writer, console *Console) *CommandSender {
	if console == nil {
		console = NewConsole(nil)
	}
	return &CommandSender{w: w, console: console}
}

// EncodeCommand renders a command message, without the trailing newline, in
// the gateway's wire form: {"cmd": "arm", "id": 1}. The name is escaped
// the way the gateway tooling does it: HTML characters stay literal and
// anything outside ASCII becomes a \uXXXX escape.
func EncodeCommand(name string, id int64) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(name); err != nil {
		return nil, err
	}
	cmd := asciiEscape(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}))
	return fmt.Appendf(nil, `{"cmd": %s, "id": %d}`, cmd, id), nil
}

// asciiEscape replaces every non-ASCII rune in an encoded JSON string with
// \uXXXX escapes, using a surrogate pair above the BMP.
func asciiEscape(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, r := range string(b) {
		switch {
		case r < utf8.RuneSelf:
			out = append(out, byte(r))
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, hi, lo)
		default:
			out = fmt.Appendf(out, `\u%04x`, r)
		}
	}
	return out
}

// Send allocates the next command id and writes the command as one line.
// Ids start at 1 and are never reused, even when the write fails.
func (c *CommandSender) Send(name string) (int64, error) {
	id := c.lastID.Add(1)
	msg, err := EncodeCommand(name, id)
	if err != nil {
		return id, err
	}
	line := append(msg, '\n')

	log.Debugf("=> %s", msg)
	n, err := c.w.Write(line)
	if err != nil {
		return id, fmt.Errorf("send %s: %w", name, err)
	}
	if n != len(line) {
		return id, ErrShortWrite
	}
	c.console.Printf(">> Sent: %s\n", msg)
	return id, nil
}

// LastID returns the id of the most recently allocated command, 0 if none.
func (c *CommandSender) LastID() int64 {
	return c.lastID.Load()
}
