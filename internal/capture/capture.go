// internal/capture/capture.go

// Package capture configures a DI-1100 session and streams a fixed
// number of calibrated samples from it.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/kushal-thapa/dataq/internal/protocol"
	"github.com/kushal-thapa/dataq/internal/status"
)

// DefaultBatch is the number of samples consumed per chunk read.
// Requests that are a multiple of it avoid overshoot entirely.
const DefaultBatch = 32

// MaxCaptureBytes bounds the raw buffer one acquisition may hold.
const MaxCaptureBytes = 1 << 30

// preallocBytes caps the up-front buffer; larger captures grow by append.
const preallocBytes = 16 << 20

// Session abstracts the protocol operations the capture needs.
// *protocol.Session implements it.
type Session interface {
	Send(ctx context.Context, cmd string, expectEcho bool) (string, error)
	Configure(ctx context.Context, cmd string) (string, error)
	StartStreaming(ctx context.Context) error
	Available() (int, error)
	ReadExact(n int) ([]byte, error)
	Close() error
}

// Plan is the immutable request for one acquisition. Exactly one of
// Duration and Samples determines the length; Samples wins when set.
type Plan struct {
	Channels   []int
	Rate       int
	Duration   float64
	Samples    int
	Decimation int
	Filter     protocol.FilterMode
	Batch      int

	// MarkerPosition is the scan position carrying marker bits, or NoMarker.
	MarkerPosition int

	PollInterval   time.Duration
	BacklogLimit   int
	FailOnOverflow bool

	// OnStart, if set, is called once the device is streaming with the
	// negotiated rate and the resolved sample count.
	OnStart func(rate Rate, samples int)
}

// Validate checks the plan without touching the device.
func (p Plan) Validate() error {
	if len(p.Channels) == 0 || len(p.Channels) > 4 {
		return fmt.Errorf("capture: %d channels, want 1-4", len(p.Channels))
	}
	for pos, ch := range p.Channels {
		if ch < 0 || ch > 3 {
			return fmt.Errorf("capture: channel %d at position %d out of range", ch, pos)
		}
	}
	if p.Rate <= 0 {
		return errors.New("capture: rate must be > 0")
	}
	if p.Samples <= 0 && p.Duration <= 0 {
		return errors.New("capture: duration or samples required")
	}
	if err := p.checkSize(p.Samples); err != nil {
		return err
	}
	if p.Decimation < 1 {
		return errors.New("capture: decimation must be >= 1")
	}
	if p.Batch < 1 {
		return errors.New("capture: batch must be >= 1")
	}
	if p.MarkerPosition < NoMarker || p.MarkerPosition >= len(p.Channels) {
		return fmt.Errorf("capture: marker position %d out of range", p.MarkerPosition)
	}
	return nil
}

// checkSize rejects sample counts whose raw buffer exceeds MaxCaptureBytes.
func (p Plan) checkSize(samples int) error {
	if samples > MaxCaptureBytes/p.RowBytes() {
		return fmt.Errorf("capture: %d samples x %d channels exceeds %d byte capture limit",
			samples, len(p.Channels), MaxCaptureBytes)
	}
	return nil
}

// RowBytes is the packet width: one int16 per scan-list entry.
func (p Plan) RowBytes() int { return len(p.Channels) * BytesPerSample }

// Result is what downstream consumers receive. Timing math must use
// Rate.Actual, never the requested rate.
type Result struct {
	Channels []int
	Rate     Rate
	Samples  int
	Chunks   int
	Raw      [][]int16
	Volts    [][]float64
	Elapsed  time.Duration
}

// Duration is the captured span at the actual rate.
func (r *Result) Duration() time.Duration {
	if r.Rate.Actual <= 0 {
		return 0
	}
	return time.Duration(float64(r.Samples) / float64(r.Rate.Actual) * float64(time.Second))
}

// OverflowError reports host-side backlog growth past the limit. The
// device buffer may overflow and skip samples if consumption stays slow.
type OverflowError struct {
	Waiting int
	Limit   int
	Chunks  int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("capture: backlog %d bytes exceeds limit %d after %d chunks", e.Waiting, e.Limit, e.Chunks)
}

// Code implements the status error coder.
func (e *OverflowError) Code() uint16 { return status.ErrCodeOverflow }

// Configure issues the fixed pre-stream command sequence and returns
// the negotiated rate. Every command is echo-verified.
func Configure(ctx context.Context, s Session, p Plan) (Rate, error) {
	model, err := s.Configure(ctx, protocol.Info(1))
	if err != nil {
		return Rate{}, fmt.Errorf("capture: model query: %w", err)
	}
	glog.Infof("device model: %s", model)

	setup := []string{
		protocol.Stop,
		protocol.EncodeBinary,
		protocol.PacketSizeDefault,
		protocol.Dec(p.Decimation),
		protocol.Deca(1),
	}
	for _, ch := range p.Channels {
		setup = append(setup, protocol.Filter(ch, p.Filter))
	}
	for _, cmd := range setup {
		if _, err := s.Configure(ctx, cmd); err != nil {
			return Rate{}, fmt.Errorf("capture: configure: %w", err)
		}
	}

	if err := ConfigureScanList(ctx, s, p.Channels); err != nil {
		return Rate{}, err
	}

	return Negotiate(ctx, s, p.Rate, p.Decimation)
}

// Acquire owns s for the rest of its life: it configures the device,
// streams until the resolved sample count is reached, and always runs
// the session's stop sequence before returning.
func Acquire(ctx context.Context, s Session, p Plan) (res *Result, err error) {
	defer func() {
		if cerr := s.Close(); cerr != nil {
			glog.Errorf("stop sequence failed: %v", cerr)
			if err == nil {
				err = fmt.Errorf("capture: stop sequence: %w", cerr)
			}
		}
	}()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	rate, err := Configure(ctx, s, p)
	if err != nil {
		return nil, err
	}

	samples := ResolveSamples(rate.Actual, p.Duration, p.Samples)
	if samples <= 0 {
		return nil, fmt.Errorf("capture: duration %v at %d Hz resolves to no samples", p.Duration, rate.Actual)
	}
	if err := p.checkSize(samples); err != nil {
		return nil, err
	}

	glog.Infof("acquiring channels=%v rate=%d Hz samples=%d decimation=%d", p.Channels, rate.Actual, samples, p.Decimation)

	if err := s.StartStreaming(ctx); err != nil {
		return nil, fmt.Errorf("capture: start: %w", err)
	}
	if p.OnStart != nil {
		p.OnStart(rate, samples)
	}

	started := time.Now()
	buf, chunks, err := stream(ctx, s, p, samples)
	elapsed := time.Since(started)
	if err != nil {
		return nil, err
	}
	glog.Infof("acquisition time: %v (%d chunks)", elapsed, chunks)

	cols := len(p.Channels)
	raw, err := Decode(Trim(buf, samples, cols), samples, cols)
	if err != nil {
		return nil, err
	}

	return &Result{
		Channels: append([]int(nil), p.Channels...),
		Rate:     rate,
		Samples:  samples,
		Chunks:   chunks,
		Raw:      raw,
		Volts:    Calibrate(raw, p.MarkerPosition),
		Elapsed:  elapsed,
	}, nil
}

// stream drains whole chunks until chunks*batch >= samples. A partial
// chunk is never consumed, so packet alignment is preserved.
func stream(ctx context.Context, s Session, p Plan, samples int) ([]byte, int, error) {
	chunkBytes := p.Batch * p.RowBytes()
	need := (samples + p.Batch - 1) / p.Batch
	buf := make([]byte, 0, min(need*chunkBytes, preallocBytes))

	chunks := 0
	peak := 0
	warned := false

	for chunks < need {
		if err := ctx.Err(); err != nil {
			return nil, chunks, fmt.Errorf("capture: stopped after %d/%d chunks: %w", chunks, need, err)
		}

		waiting, err := s.Available()
		if err != nil {
			return nil, chunks, fmt.Errorf("capture: chunk %d/%d: %w", chunks, need, err)
		}

		if p.BacklogLimit > 0 && waiting > p.BacklogLimit && waiting > peak {
			if p.FailOnOverflow {
				return nil, chunks, &OverflowError{Waiting: waiting, Limit: p.BacklogLimit, Chunks: chunks}
			}
			if !warned {
				glog.Warningf("backlog growing: %d bytes waiting (limit %d) after %d chunks", waiting, p.BacklogLimit, chunks)
				warned = true
			}
		}
		if waiting > peak {
			peak = waiting
		}

		if waiting < chunkBytes {
			if p.PollInterval > 0 {
				time.Sleep(p.PollInterval)
			}
			continue
		}

		for waiting >= chunkBytes && chunks < need {
			b, err := s.ReadExact(chunkBytes)
			if err != nil {
				return nil, chunks, fmt.Errorf("capture: chunk %d/%d: %w", chunks, need, err)
			}
			buf = append(buf, b...)
			waiting -= chunkBytes
			chunks++
		}
		glog.V(2).Infof("chunks=%d/%d waiting=%d", chunks, need, waiting)
	}

	return buf, chunks, nil
}
