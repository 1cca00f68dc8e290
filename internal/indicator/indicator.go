// internal/indicator/indicator.go

// Package indicator drives the DI-1100 status LED. It uses a separate,
// slower connection with a read timeout; commands are never echoed.
package indicator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goburrow/serial"
	"github.com/golang/glog"

	"github.com/kushal-thapa/dataq/internal/protocol"
)

// Baud is the indicator-control line rate.
const Baud = 115200

// Color indices accepted by the "led" command.
type Color int

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Yellow
	White
)

var colorNames = [...]string{"black", "blue", "green", "cyan", "red", "magenta", "yellow", "white"}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("color(%d)", int(c))
	}
	return colorNames[c]
}

// Idle is the color the device is left in.
const Idle = Yellow

// DefaultSequence is blinked when no colors are requested.
var DefaultSequence = []Color{Blue, Green, Red, White}

// ParseColor resolves a color name, case-insensitively.
func ParseColor(name string) (Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range colorNames {
		if n == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("indicator: unknown color %q", name)
}

// ParseColors resolves names; an empty list yields DefaultSequence.
func ParseColors(names []string) ([]Color, error) {
	if len(names) == 0 {
		return DefaultSequence, nil
	}
	out := make([]Color, 0, len(names))
	for _, n := range names {
		c, err := ParseColor(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Open opens port for indicator control.
func Open(port string, baud int, timeout time.Duration) (io.ReadWriteCloser, error) {
	p, err := serial.Open(&serial.Config{
		Address:  port,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("indicator: open %s: %w", port, err)
	}
	return p, nil
}

// Blink shows each color for hold, then leaves the LED at Idle. The
// reset to Idle is attempted even when ctx is canceled mid-sequence.
func Blink(ctx context.Context, s *protocol.Session, colors []Color, hold time.Duration) error {
	var err error

	for _, c := range colors {
		glog.Infof("blinking: %s", c)
		if _, err = s.Send(ctx, protocol.LED(int(c)), false); err != nil {
			break
		}

		t := time.NewTimer(hold)
		select {
		case <-ctx.Done():
			t.Stop()
			err = ctx.Err()
		case <-t.C:
		}
		if err != nil {
			break
		}
	}

	if _, rerr := s.Send(context.Background(), protocol.LED(int(Idle)), false); rerr != nil && err == nil {
		err = rerr
	}
	return err
}
