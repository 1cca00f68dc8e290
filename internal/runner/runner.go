// internal/runner/runner.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/kushal-thapa/dataq/internal/capture"
	"github.com/kushal-thapa/dataq/internal/config"
	"github.com/kushal-thapa/dataq/internal/device"
	"github.com/kushal-thapa/dataq/internal/protocol"
	"github.com/kushal-thapa/dataq/internal/status"
	"github.com/kushal-thapa/dataq/internal/writer"
)

// Deps are the host-facing pieces of a run. Zero values select the
// real serial stack; Status is optional.
type Deps struct {
	Enumerate device.Enumerator
	Open      device.Opener
	Status    writer.StatusWriter
}

// Options maps device timing config onto the protocol layer.
func Options(c config.DeviceConfig) protocol.Options {
	return protocol.Options{
		CommandDelay: time.Duration(c.CommandDelayMs) * time.Millisecond,
		EchoPoll:     time.Duration(c.EchoPollMs) * time.Millisecond,
		EchoAttempts: c.EchoAttempts,
		Settle:       time.Duration(c.SettleMs) * time.Millisecond,
	}
}

// PlanFromConfig builds the acquisition plan from a normalized config.
func PlanFromConfig(a config.AcquisitionConfig) capture.Plan {
	return capture.Plan{
		Channels:       append([]int(nil), a.Channels...),
		Rate:           a.Rate,
		Duration:       a.Duration,
		Samples:        a.Samples,
		Decimation:     a.Decimation,
		Filter:         protocol.FilterMode(a.FilterMode),
		Batch:          a.Batch,
		MarkerPosition: a.Marker(),
		PollInterval:   time.Duration(a.PollIntervalUs) * time.Microsecond,
		BacklogLimit:   a.BacklogLimit,
		FailOnOverflow: a.FailOnOverflow,
	}
}

// Run performs one acquisition: discover, open, configure, stream,
// stop. The device is stopped and closed on every path once opened.
func Run(ctx context.Context, cfg config.Config, d Deps) (*capture.Result, error) {
	if d.Enumerate == nil {
		d.Enumerate = device.SystemPorts
	}
	if d.Open == nil {
		d.Open = device.Open
	}

	plan := PlanFromConfig(cfg.Acquisition)
	pub := publisher{w: d.Status}
	pub.snap = status.Snapshot{
		Health:     status.HealthUnknown,
		Channels:   status.Clamp16(len(plan.Channels)),
		Decimation: status.Clamp16(plan.Decimation),
	}
	plan.OnStart = func(rate capture.Rate, samples int) {
		pub.snap.ActualRate = status.Clamp32(rate.Actual)
		pub.snap.Samples = status.Clamp32(samples)
		pub.publish(status.HealthAcquiring)
	}

	res, err := run(ctx, cfg, d, plan)
	pub.finish(res, err)
	return res, err
}

func run(ctx context.Context, cfg config.Config, d Deps, plan capture.Plan) (*capture.Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	h, err := device.Discover(d.Enumerate, cfg.Device.Signature)
	if err != nil {
		return nil, err
	}
	if cfg.Device.Baud > 0 {
		h.Baud = cfg.Device.Baud
	}

	port, err := d.Open(h)
	if err != nil {
		return nil, &protocol.TransportError{Op: "open", Err: err}
	}
	glog.Infof("opened %s", h.Port)

	// Acquire owns the session from here and closes it on return.
	s := protocol.NewSession(port, Options(cfg.Device))
	return capture.Acquire(ctx, s, plan)
}

// publisher keeps the last snapshot and delivers changes. Status
// failures are logged, never returned.
type publisher struct {
	w    writer.StatusWriter
	snap status.Snapshot
}

func (p *publisher) publish(health uint16) {
	p.snap.Health = health
	if p.w == nil {
		return
	}
	if err := p.w.WriteStatus(p.snap); err != nil {
		glog.Warningf("status write failed: %v", err)
	}
}

func (p *publisher) finish(res *capture.Result, err error) {
	if res != nil {
		p.snap.ActualRate = status.Clamp32(res.Rate.Actual)
		p.snap.Samples = status.Clamp32(res.Samples)
	}
	p.snap.LastErrorCode = status.ErrorCode(err)

	switch {
	case err == nil:
		p.publish(status.HealthOK)
	case errors.Is(err, context.Canceled):
		p.publish(status.HealthStopped)
	default:
		p.publish(status.HealthError)
	}
}

// Summary renders the one-line report printed after a run.
func Summary(res *capture.Result) string {
	return fmt.Sprintf("acquired %d samples x %d channels at %d Hz (requested %d, divisor %d) in %s",
		res.Samples, len(res.Channels), res.Rate.Actual, res.Rate.Requested, res.Rate.Divisor,
		res.Elapsed.Round(time.Millisecond))
}
