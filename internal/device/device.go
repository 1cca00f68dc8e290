// internal/device/device.go

// Package device locates a DATAQ instrument among the host's serial
// endpoints and opens it for the command/streaming protocol.
package device

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// DataBaud is the rate used for configuration and streaming. The
// DI-1100 is a USB CDC device and ignores the value, so the largest
// supported rate is used.
const DataBaud = 1382400

// Handle identifies a discovered endpoint and how to open it.
type Handle struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration // 0 = non-blocking reads
}

// DataHandle returns the handle used for acquisition on port.
func DataHandle(port string) Handle {
	return Handle{
		Port:        port,
		Baud:        DataBaud,
		ReadTimeout: 0,
	}
}

// Port is the transport the protocol layer owns for a session.
type Port interface {
	io.ReadWriteCloser

	// ResetInputBuffer discards bytes received but not yet read.
	ResetInputBuffer() error
}

// Opener opens a handle. Open is the production implementation.
type Opener func(Handle) (Port, error)

// Open opens h as 8N1 with h.ReadTimeout applied. With a zero timeout
// Read returns immediately with whatever is buffered, possibly nothing.
func Open(h Handle) (Port, error) {
	if h.Port == "" {
		return nil, fmt.Errorf("device: port required")
	}

	mode := &serial.Mode{
		BaudRate: h.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(h.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("device: open %s: %w", h.Port, err)
	}

	if err := p.SetReadTimeout(h.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("device: set read timeout on %s: %w", h.Port, err)
	}

	return p, nil
}
