// internal/protocol/link.go
package protocol

import (
	"bytes"
	"io"
	"os"
)

const readScratch = 64 * 1024

// Link buffers the device byte stream on the host side so callers can
// ask how much is waiting without consuming it. The underlying reader
// must not block: a zero-timeout serial port returns (0, nil) when
// nothing has arrived.
type Link struct {
	r       io.Reader
	pending []byte
	scratch []byte
}

// NewLink wraps r.
func NewLink(r io.Reader) *Link {
	return &Link{
		r:       r,
		scratch: make([]byte, readScratch),
	}
}

// Available performs one non-blocking read and returns the number of
// bytes waiting. On error, bytes already buffered stay buffered.
func (l *Link) Available() (int, error) {
	n, err := l.r.Read(l.scratch)
	if n > 0 {
		l.pending = append(l.pending, l.scratch[:n]...)
	}
	if err != nil && !os.IsTimeout(err) {
		return len(l.pending), err
	}
	return len(l.pending), nil
}

// Buffered returns the bytes waiting without touching the reader.
func (l *Link) Buffered() int { return len(l.pending) }

// ReadExact consumes exactly n buffered bytes. The returned slice is
// only valid until the next call on l.
func (l *Link) ReadExact(n int) ([]byte, error) {
	if n > len(l.pending) {
		return nil, io.ErrShortBuffer
	}
	out := l.pending[:n:n]
	l.pending = l.pending[n:]
	return out, nil
}

// Line consumes through the first CR or LF and returns the trimmed
// text before it. ok is false when no terminator has arrived yet.
func (l *Link) Line() (line string, ok bool) {
	i := bytes.IndexAny(l.pending, "\r\n")
	if i < 0 {
		return "", false
	}
	line = trimEcho(l.pending[:i])
	l.pending = l.pending[i+1:]
	return line, true
}

// TakeAll consumes everything buffered as one trimmed line.
func (l *Link) TakeAll() string {
	line := trimEcho(l.pending)
	l.pending = nil
	return line
}

// Discard drops everything buffered.
func (l *Link) Discard() int {
	n := len(l.pending)
	l.pending = nil
	return n
}

func trimEcho(b []byte) string {
	return string(bytes.Trim(b, "\r\n\x00"))
}
