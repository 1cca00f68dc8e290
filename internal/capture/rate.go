// internal/capture/rate.go
package capture

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/kushal-thapa/dataq/internal/protocol"
)

// ClockHz is the DI-1100 sample clock. The device only accepts integer
// divisors of it.
const ClockHz = 60_000_000

// Rate is the outcome of sample-rate negotiation. Actual is the only
// rate downstream timing math may use.
type Rate struct {
	Requested  int
	Decimation int
	Divisor    int
	Actual     int
}

// Divisor returns floor(ClockHz / desired / decimation).
func Divisor(desired, decimation int) int {
	if desired <= 0 || decimation <= 0 {
		return 0
	}
	return ClockHz / (desired * decimation)
}

// ActualRate returns floor(ClockHz / divisor / decimation).
func ActualRate(divisor, decimation int) int {
	if divisor <= 0 || decimation <= 0 {
		return 0
	}
	return ClockHz / (divisor * decimation)
}

// Negotiate sets the divisor for desired, then queries it back. The
// divisor the device reports wins over the one sent; if the reply
// cannot be parsed, the sent divisor is assumed.
func Negotiate(ctx context.Context, s Session, desired, decimation int) (Rate, error) {
	v := Divisor(desired, decimation)
	if v < 1 {
		return Rate{}, fmt.Errorf("capture: rate %d with decimation %d exceeds clock %d", desired, decimation, ClockHz)
	}

	if _, err := s.Configure(ctx, protocol.Srate(v)); err != nil {
		return Rate{}, fmt.Errorf("capture: set rate want=%d divisor=%d: %w", desired, v, err)
	}
	echo, err := s.Configure(ctx, protocol.SrateQuery)
	if err != nil {
		return Rate{}, fmt.Errorf("capture: query rate divisor=%d: %w", v, err)
	}

	accepted := v
	if got, ok := parseDivisor(echo); ok && got != v {
		glog.Warningf("device adjusted divisor sent=%d accepted=%d", v, got)
		accepted = got
	}

	r := Rate{
		Requested:  desired,
		Decimation: decimation,
		Divisor:    accepted,
		Actual:     ActualRate(accepted, decimation),
	}
	if r.Actual != desired {
		glog.Infof("rate quantized requested=%d actual=%d divisor=%d", desired, r.Actual, accepted)
	}
	return r, nil
}

// parseDivisor takes the last field of a "srate <n>" reply.
func parseDivisor(echo string) (int, bool) {
	fields := strings.Fields(echo)
	if len(fields) < 2 || fields[0] != protocol.SrateQuery {
		return 0, false
	}
	v, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ResolveSamples returns count when positive, otherwise floor(fs * duration)
// saturated at math.MaxInt32.
func ResolveSamples(fs int, duration float64, count int) int {
	if count > 0 {
		return count
	}
	v := math.Floor(float64(fs) * duration)
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

// ConfigureScanList assigns channels to scan positions 0..n-1. This
// order is the column order of every packet.
func ConfigureScanList(ctx context.Context, s Session, channels []int) error {
	for pos, ch := range channels {
		if _, err := s.Configure(ctx, protocol.Slist(pos, ch)); err != nil {
			return fmt.Errorf("capture: scan list position=%d channel=%d: %w", pos, ch, err)
		}
	}
	return nil
}
