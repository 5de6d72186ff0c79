package monitor

import (
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial/enumerator"
)

// Raspberry Pi USB vendor id, used by RP2040 boards.
const rp2040VID = "2E8A"

// PortInfo holds details about a serial port.
type PortInfo struct {
	Name         string
	Description  string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
}

// Enumerate lists the host's serial ports. Tests replace it.
var Enumerate = func() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var result []PortInfo
	for _, p := range ports {
		desc := p.Product
		if desc == "" {
			desc = "n/a"
		}
		result = append(result, PortInfo{
			Name:         p.Name,
			Description:  desc,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
		})
	}
	return result, nil
}

// LikelyGateway reports whether p looks like the RP2040-based gateway.
func LikelyGateway(p PortInfo) bool {
	return strings.Contains(strings.ToLower(p.Name), "usbmodem") ||
		strings.Contains(strings.ToLower(p.Description), "rp2040") ||
		strings.EqualFold(p.VID, rp2040VID)
}

// ListPorts prints the available serial ports to out and suggests the first
// one that looks like the gateway. It returns the suggestion, or "" if none.
func ListPorts(out io.Writer) (string, error) {
	console := NewConsole(out)

	ports, err := Enumerate()
	if err != nil {
		log.Errorf("enumerating serial ports: %v", err)
		return "", err
	}
	if len(ports) == 0 {
		console.Println("No serial ports found")
		return "", nil
	}

	console.Println("Available serial ports:")
	for _, p := range ports {
		console.Printf("  %s - %s\n", p.Name, p.Description)
	}

	for _, p := range ports {
		if LikelyGateway(p) {
			console.Printf("\nLikely RP2040 device: %s\n", p.Name)
			return p.Name, nil
		}
	}
	return "", nil
}
