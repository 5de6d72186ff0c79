package monitor

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPorts(t *testing.T, ports []PortInfo, err error) {
	t.Helper()
	original := Enumerate
	t.Cleanup(func() { Enumerate = original })
	Enumerate = func() ([]PortInfo, error) { return ports, err }
}

func TestListPorts_Empty(t *testing.T) {
	withPorts(t, nil, nil)

	var out bytes.Buffer
	suggestion, err := ListPorts(&out)
	require.NoError(t, err)
	assert.Empty(t, suggestion)
	assert.Equal(t, "No serial ports found\n", out.String())
}

func TestListPorts_SuggestsFirstMatch(t *testing.T) {
	withPorts(t, []PortInfo{
		{Name: "/dev/cu.Bluetooth-Incoming-Port", Description: "n/a"},
		{Name: "/dev/cu.usbmodem14101", Description: "Board CDC"},
		{Name: "/dev/cu.usbmodem14201", Description: "RP2040 Gateway"},
	}, nil)

	var out bytes.Buffer
	suggestion, err := ListPorts(&out)
	require.NoError(t, err)
	assert.Equal(t, "/dev/cu.usbmodem14101", suggestion)
	assert.Equal(t, "Available serial ports:\n"+
		"  /dev/cu.Bluetooth-Incoming-Port - n/a\n"+
		"  /dev/cu.usbmodem14101 - Board CDC\n"+
		"  /dev/cu.usbmodem14201 - RP2040 Gateway\n"+
		"\nLikely RP2040 device: /dev/cu.usbmodem14101\n", out.String())
}

func TestListPorts_NoMatch(t *testing.T) {
	withPorts(t, []PortInfo{{Name: "/dev/ttyS0", Description: "n/a"}}, nil)

	var out bytes.Buffer
	suggestion, err := ListPorts(&out)
	require.NoError(t, err)
	assert.Empty(t, suggestion)
	assert.NotContains(t, out.String(), "Likely")
}

func TestListPorts_EnumerationError(t *testing.T) {
	withPorts(t, nil, errors.New("enumeration failed"))

	_, err := ListPorts(&bytes.Buffer{})
	assert.EqualError(t, err, "enumeration failed")
}

func TestLikelyGateway(t *testing.T) {
	tests := []struct {
		name string
		port PortInfo
		want bool
	}{
		{"usbmodem name", PortInfo{Name: "/dev/cu.USBMODEM1"}, true},
		{"rp2040 description", PortInfo{Name: "/dev/ttyACM0", Description: "Pico rp2040 CDC"}, true},
		{"raspberry pi vid", PortInfo{Name: "/dev/ttyACM1", VID: "2e8a"}, true},
		{"ftdi adapter", PortInfo{Name: "/dev/ttyUSB0", Description: "FT232R USB UART", VID: "0403"}, false},
		{"builtin uart", PortInfo{Name: "/dev/ttyS0"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LikelyGateway(tt.port))
		})
	}
}
