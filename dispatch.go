package monitor

import (
	"encoding/json"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Inbound message types sent by the gateway.
const (
	TypeTelemetry = "tel"
	TypeLink      = "link"
	TypeStatus    = "status"
	TypeAck       = "ack"
	TypeError     = "error"
)

// Dispatcher decodes gateway lines, records telemetry and prints one record
// per line. It never fails: anything it cannot interpret is printed verbatim.
type Dispatcher struct {
	console *Console
	tracker *Tracker
}

// NewDispatcher returns a Dispatcher that prints to console and records
// telemetry in tracker.
func NewDispatcher(console *Console, tracker *Tracker) *Dispatcher {
	return &Dispatcher{console: console, tracker: tracker}
}

// Dispatch handles a single line received from the gateway.
func (d *Dispatcher) Dispatch(line string) {
	log.Debugf("<= %s", line)

	var msg fields
	if err := json.Unmarshal([]byte(line), &msg); err != nil || msg == nil {
		d.console.Printf("<< Raw: %s\n", line)
		return
	}

	switch msg.str("type", "") {
	case TypeTelemetry:
		d.telemetry(msg)
	case TypeLink:
		d.console.Printf("<< Link Status: %s\n", linkState(msg.boolean("connected")))
	case TypeStatus:
		d.console.Printf("<< Gateway Status: link=%s rx=%d tx=%d RSSI: %ddBm SNR: %ddB\n",
			linkState(msg.boolean("connected")),
			msg.integer("rx"), msg.integer("tx"),
			msg.integer("rssi"), msg.integer("snr"))
	case TypeAck:
		result := "FAILED"
		if msg.boolean("ok") {
			result = "OK"
		}
		d.console.Printf("<< ACK: %s - %s\n", ackLabel(msg), result)
	case TypeError:
		d.console.Printf("<< ERROR [%s]: %s\n", msg.str("code", ""), msg.str("msg", ""))
	default:
		d.console.Printf("<< Unknown: %s\n", line)
	}
}

func (d *Dispatcher) telemetry(msg fields) {
	var (
		rssi  = int(msg.integer("rssi"))
		snr   = int(msg.integer("snr"))
		state = msg.str("state", "")
		alt   = msg.number("alt")
	)
	d.tracker.RecordTelemetry(rssi, snr, state, alt)

	d.console.Printf("[%7.1fs] Alt: %7.2fm  Vel: %6.2fm/s  State: %-8s  RSSI: %ddBm  SNR: %ddB  #%d\n",
		msg.number("t")/1000.0,
		alt,
		msg.number("vel"),
		msg.str("state", "?"),
		rssi,
		snr,
		msg.integer("seq"))
}

func linkState(connected bool) string {
	if connected {
		return "CONNECTED"
	}
	return "DISCONNECTED"
}

// ackLabel names the acknowledged command. The gateway firmware echoes only
// the command id, so fall back to that when cmd is missing.
func ackLabel(msg fields) string {
	if cmd, ok := msg["cmd"].(string); ok {
		return cmd
	}
	if _, ok := msg["id"].(float64); ok {
		return "#" + strconv.FormatInt(msg.integer("id"), 10)
	}
	return ""
}

// fields is a decoded JSON object. Accessors return a zero value when the
// key is missing or holds the wrong type.
type fields map[string]any

func (f fields) str(key, def string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return def
}

func (f fields) number(key string) float64 {
	if v, ok := f[key].(float64); ok {
		return v
	}
	return 0
}

// integer truncates toward zero.
func (f fields) integer(key string) int64 {
	return int64(f.number(key))
}

func (f fields) boolean(key string) bool {
	v, _ := f[key].(bool)
	return v
}
