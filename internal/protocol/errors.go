// internal/protocol/errors.go
package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/kushal-thapa/dataq/internal/status"
)

var (
	// ErrClosed indicates the session already ran its stop sequence.
	ErrClosed = errors.New("protocol: session closed")
	// ErrStreaming indicates an echo was requested while the device is
	// scanning. Reading text then would consume sample packets.
	ErrStreaming = errors.New("protocol: echo not available while streaming")
	// ErrNotStreaming indicates a sample read outside the streaming state.
	ErrNotStreaming = errors.New("protocol: not streaming")
)

// TransportError is a failed read or write on the serial link. It is
// fatal for a streaming session; there is no reconnect.
type TransportError struct {
	Op  string // "read" or "write"
	Cmd string // empty for sample reads
	Err error
}

func (e *TransportError) Error() string {
	if e.Cmd != "" {
		return fmt.Sprintf("protocol: %s failed cmd=%q: %v", e.Op, e.Cmd, e.Err)
	}
	return fmt.Sprintf("protocol: %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Code implements the status error coder.
func (e *TransportError) Code() uint16 { return status.ErrCodeTransport }

// TimeoutError reports a configuration command that was never echoed.
// A rejected command and a slow device are indistinguishable here.
type TimeoutError struct {
	Cmd      string
	Attempts int
	Wait     time.Duration
	LastErr  error // last transient read error, if any
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("protocol: no echo for cmd=%q after %d attempts (%v)", e.Cmd, e.Attempts, e.Wait)
	if e.LastErr != nil {
		msg += fmt.Sprintf(": last read error: %v", e.LastErr)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.LastErr }

// Code implements the status error coder.
func (e *TimeoutError) Code() uint16 { return status.ErrCodeConfigTimeout }
