// internal/protocol/session.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
)

// Transport is the byte stream a Session owns. Ports that can discard
// their OS receive buffer also implement ResetInputBuffer.
type Transport interface {
	io.ReadWriteCloser
}

type inputResetter interface {
	ResetInputBuffer() error
}

// Options tunes protocol timing.
type Options struct {
	// CommandDelay is slept after every write; the device needs time
	// to process a command before its echo is meaningful.
	CommandDelay time.Duration

	// EchoPoll and EchoAttempts bound the echo wait.
	EchoPoll     time.Duration
	EchoAttempts int

	// Settle is slept between the final stop and the input flush.
	Settle time.Duration
}

// DefaultOptions returns the timing used against real hardware.
func DefaultOptions() Options {
	return Options{
		CommandDelay: 100 * time.Millisecond,
		EchoPoll:     10 * time.Millisecond,
		EchoAttempts: 200,
		Settle:       time.Second,
	}
}

// Session exclusively owns one device connection for its lifetime.
// It is not safe for concurrent use; the protocol is strictly
// request/echo and the device serializes commands itself.
type Session struct {
	port  Transport
	link  *Link
	opts  Options
	state State
}

// NewSession takes ownership of port. Close must be called on every path.
func NewSession(port Transport, opts Options) *Session {
	if opts.EchoAttempts <= 0 {
		opts.EchoAttempts = 1
	}
	return &Session{
		port: port,
		link: NewLink(port),
		opts: opts,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Send writes cmd. With expectEcho false it returns as soon as the
// write completes and nothing is read; command application is then
// unverified. With expectEcho true it waits for the device's echo line.
func (s *Session) Send(ctx context.Context, cmd string, expectEcho bool) (string, error) {
	if s.state >= Stopping {
		return "", ErrClosed
	}
	if expectEcho && s.state == Streaming {
		return "", fmt.Errorf("%w: cmd=%q", ErrStreaming, cmd)
	}

	if _, err := s.port.Write(Encode(cmd)); err != nil {
		return "", &TransportError{Op: "write", Cmd: cmd, Err: err}
	}
	sleep(s.opts.CommandDelay)

	if !expectEcho {
		glog.V(1).Infof("cmd=%q (no echo)", cmd)
		return "", nil
	}

	if s.state == Idle {
		s.state = Configuring
	}

	echo, err := s.awaitEcho(ctx, cmd)
	if err != nil {
		return "", err
	}
	glog.V(1).Infof("cmd=%q echo=%q", cmd, echo)
	return echo, nil
}

// Configure sends cmd and requires an echo.
func (s *Session) Configure(ctx context.Context, cmd string) (string, error) {
	return s.Send(ctx, cmd, true)
}

// awaitEcho polls until a non-empty line arrives. Read errors are
// treated as line noise and retried; the whole wait is bounded.
func (s *Session) awaitEcho(ctx context.Context, cmd string) (string, error) {
	var lastErr error
	last := -1

	for attempt := 1; attempt <= s.opts.EchoAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("protocol: echo wait cmd=%q: %w", cmd, err)
		}

		if _, err := s.link.Available(); err != nil {
			lastErr = err
			glog.V(2).Infof("cmd=%q echo read failed (attempt %d): %v", cmd, attempt, err)
			sleep(s.opts.EchoPoll)
			continue
		}

		for {
			line, ok := s.link.Line()
			if !ok {
				break
			}
			if line != "" {
				return line, nil
			}
		}

		// unterminated text that stopped growing is taken as the echo
		if n := s.link.Buffered(); n > 0 && n == last {
			if line := s.link.TakeAll(); line != "" {
				return line, nil
			}
		}
		last = s.link.Buffered()

		sleep(s.opts.EchoPoll)
	}

	return "", &TimeoutError{
		Cmd:      cmd,
		Attempts: s.opts.EchoAttempts,
		Wait:     time.Duration(s.opts.EchoAttempts) * s.opts.EchoPoll,
		LastErr:  lastErr,
	}
}

// StartStreaming discards leftover echo text and sends start without
// waiting for an echo. From here on the stream carries only packets.
func (s *Session) StartStreaming(ctx context.Context) error {
	if s.state >= Stopping {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if n := s.link.Discard(); n > 0 {
		glog.V(1).Infof("discarded %d stale bytes before start", n)
	}
	if r, ok := s.port.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			return &TransportError{Op: "flush", Cmd: Start, Err: err}
		}
	}

	if _, err := s.Send(ctx, Start, false); err != nil {
		return err
	}
	s.state = Streaming
	return nil
}

// Available reports the sample bytes waiting.
func (s *Session) Available() (int, error) {
	if s.state != Streaming {
		return 0, ErrNotStreaming
	}
	n, err := s.link.Available()
	if err != nil {
		return n, &TransportError{Op: "read", Err: err}
	}
	return n, nil
}

// ReadExact consumes n waiting sample bytes; see Link.ReadExact.
func (s *Session) ReadExact(n int) ([]byte, error) {
	if s.state != Streaming {
		return nil, ErrNotStreaming
	}
	return s.link.ReadExact(n)
}

// Close runs the stop sequence: stop (no echo, the device may already
// be silent), settle, flush input, close the transport. The device is
// always told to stop before the transport closes. Close is idempotent.
func (s *Session) Close() error {
	if s.state == Closed {
		return nil
	}
	from := s.state
	s.state = Stopping

	var errs []error

	if _, err := s.port.Write(Encode(Stop)); err != nil {
		errs = append(errs, &TransportError{Op: "write", Cmd: Stop, Err: err})
	}
	sleep(s.opts.Settle)

	if n := s.link.Discard(); n > 0 {
		glog.V(2).Infof("flushed %d buffered bytes on stop", n)
	}
	if r, ok := s.port.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			errs = append(errs, &TransportError{Op: "flush", Err: err})
		}
	}

	if err := s.port.Close(); err != nil {
		errs = append(errs, &TransportError{Op: "close", Err: err})
	}

	s.state = Closed
	glog.V(1).Infof("session closed (from %s)", from)
	return errors.Join(errs...)
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
