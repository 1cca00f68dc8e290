// internal/dataqtest/device.go

// Package dataqtest provides a scripted DI-1100 stand-in for tests.
package dataqtest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ErrTransient is returned by Read while ReadErrors > 0.
var ErrTransient = errors.New("dataqtest: transient read error")

// Device echoes configuration commands the way the instrument does and,
// after "start", releases Stream a slice at a time on each Read.
// It implements io.ReadWriteCloser and ResetInputBuffer.
type Device struct {
	mu sync.Mutex

	// Stream is the binary payload sent while scanning.
	Stream []byte
	// Release caps the stream bytes made available per Read (0 = all).
	Release int
	// StreamErr is returned by Read once Stream is exhausted.
	StreamErr error

	// Silent lists commands the device never echoes.
	Silent map[string]bool
	// AcceptDivisor adjusts the divisor the device reports for "srate".
	AcceptDivisor func(requested int) int
	// EchoSuffix terminates echoes; defaults to "\r".
	EchoSuffix string
	// ReadErrors injects transient Read failures.
	ReadErrors int
	// WriteErr fails every Write when set.
	WriteErr error

	rx        []byte
	partial   []byte
	commands  []string
	streaming bool
	divisor   int
	flushes   int
	closed    int
}

// Read implements io.Reader. It never blocks.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ReadErrors > 0 {
		d.ReadErrors--
		return 0, ErrTransient
	}

	if d.streaming {
		if len(d.Stream) == 0 && len(d.rx) == 0 && d.StreamErr != nil {
			return 0, d.StreamErr
		}
		n := len(d.Stream)
		if d.Release > 0 && n > d.Release {
			n = d.Release
		}
		d.rx = append(d.rx, d.Stream[:n]...)
		d.Stream = d.Stream[n:]
	}

	n := copy(p, d.rx)
	d.rx = d.rx[n:]
	return n, nil
}

// Write implements io.Writer, handling every complete CR-terminated command.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.WriteErr != nil {
		return 0, d.WriteErr
	}

	d.partial = append(d.partial, p...)
	for {
		i := bytes.IndexByte(d.partial, '\r')
		if i < 0 {
			break
		}
		cmd := string(d.partial[:i])
		d.partial = d.partial[i+1:]
		d.handle(cmd)
	}
	return len(p), nil
}

func (d *Device) handle(cmd string) {
	d.commands = append(d.commands, cmd)

	wasStreaming := d.streaming
	reply := cmd

	fields := strings.Fields(cmd)
	switch {
	case cmd == "start":
		d.streaming = true
	case cmd == "stop":
		d.streaming = false
	case cmd == "srate":
		reply = fmt.Sprintf("srate %d", d.divisor)
	case len(fields) == 2 && fields[0] == "srate":
		v, _ := strconv.Atoi(fields[1])
		if d.AcceptDivisor != nil {
			v = d.AcceptDivisor(v)
		}
		d.divisor = v
	case len(fields) == 2 && fields[0] == "info":
		if fields[1] == "1" {
			reply = "info 1 1100"
		}
	}

	// a scanning device sends packets, not text
	if wasStreaming || d.streaming || d.Silent[cmd] {
		return
	}
	suffix := d.EchoSuffix
	if suffix == "" {
		suffix = "\r"
	}
	d.rx = append(d.rx, reply...)
	d.rx = append(d.rx, suffix...)
}

// ResetInputBuffer discards everything not yet read.
func (d *Device) ResetInputBuffer() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rx = nil
	d.flushes++
	return nil
}

// Close implements io.Closer.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

// Commands returns every command received, in order.
func (d *Device) Commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.commands...)
}

// Streaming reports whether the device is scanning.
func (d *Device) Streaming() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streaming
}

// Closed returns how many times Close was called.
func (d *Device) Closed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Flushes returns how many times the input buffer was reset.
func (d *Device) Flushes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flushes
}

// Divisor returns the divisor the device last accepted.
func (d *Device) Divisor() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.divisor
}

// Packets encodes rows of raw samples as little-endian int16 packets.
func Packets(rows [][]int16) []byte {
	var buf bytes.Buffer
	for _, row := range rows {
		for _, v := range row {
			_ = binary.Write(&buf, binary.LittleEndian, v)
		}
	}
	return buf.Bytes()
}

// Ramp builds n rows where column c of row r holds r*16 + c + base[c].
// Distinct per-column bases make interleave errors visible.
func Ramp(n int, base []int16) [][]int16 {
	rows := make([][]int16, n)
	for r := range rows {
		row := make([]int16, len(base))
		for c := range row {
			row[c] = int16(r*16+c) + base[c]
		}
		rows[r] = row
	}
	return rows
}
