// cmd/dataq/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"

	"github.com/kushal-thapa/dataq/internal/capture"
	"github.com/kushal-thapa/dataq/internal/config"
)

func parse(t *testing.T, args ...string) (*options, *config.Config) {
	t.Helper()

	o := &options{}
	cmd := newRootCmd()
	cmd.SetArgs(args)
	require.NoError(t, cmd.ParseFlags(args))

	// newRootCmd binds its own options; re-read them through the flag set
	fs := cmd.Flags()
	o.channels, _ = fs.GetIntSlice("channel")
	o.rate, _ = fs.GetInt("rate")
	o.duration, _ = fs.GetFloat64("time")
	o.samples, _ = fs.GetInt("nsamp")

	cfg := config.Default()
	applyFlags(fs, o, cfg)
	return o, cfg
}

func TestApplyFlagsOnlyChanged(t *testing.T) {
	_, cfg := parse(t)
	require.Equal(t, []int{0, 1, 2}, cfg.Acquisition.Channels)
	require.Equal(t, config.DefaultRate, cfg.Acquisition.Rate)
	require.Equal(t, float64(config.DefaultDuration), cfg.Acquisition.Duration)
}

func TestApplyFlagsOverrides(t *testing.T) {
	_, cfg := parse(t, "-c", "3,1", "-r", "7000", "-n", "1000")
	require.Equal(t, []int{3, 1}, cfg.Acquisition.Channels)
	require.Equal(t, 7000, cfg.Acquisition.Rate)
	require.Equal(t, 1000, cfg.Acquisition.Samples)
	require.NoError(t, config.Validate(cfg))
}

func TestApplyFlagsTimeClearsFileSamples(t *testing.T) {
	o := &options{duration: 2}
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"-t", "2"}))

	cfg := config.Default()
	cfg.Acquisition.Samples = 500
	applyFlags(cmd.Flags(), o, cfg)

	require.Equal(t, 0, cfg.Acquisition.Samples)
	require.Equal(t, 2.0, cfg.Acquisition.Duration)
}

func TestListPortsMarksMatches(t *testing.T) {
	var out bytes.Buffer
	err := listPorts(&out, func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyS0"},
			{Name: "/dev/ttyACM0", IsUSB: true, VID: "0683", PID: "1100"},
		}, nil
	}, config.DefaultSignature)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "  /dev/ttyS0"))
	require.True(t, strings.HasPrefix(lines[1], "* /dev/ttyACM0"))
}

func TestPrintRows(t *testing.T) {
	var out bytes.Buffer
	printRows(&out, &capture.Result{
		Channels: []int{2, 0},
		Rate:     capture.Rate{Actual: 1000},
		Samples:  2,
		Volts:    [][]float64{{1, -1}, {0.5, 0}},
	})

	require.Equal(t, "t_s\tch2\tch0\n"+
		"0.000000\t1.0000\t-1.0000\n"+
		"0.001000\t0.5000\t0.0000\n", out.String())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigControlIgnoresAcquisition(t *testing.T) {
	o := &options{configPath: writeConfig(t, "indicator: {hold_ms: 500}\n")}
	cmd := newLEDCmd(o)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := loadConfig(cmd, o, false)
	require.NoError(t, err)
	require.Equal(t, 500, cfg.Indicator.HoldMs)
	require.Equal(t, config.DefaultIndicatorBaud, cfg.Indicator.Baud)
	require.Equal(t, config.DefaultSignature, cfg.Device.Signature)
}

func TestLoadConfigAcquireRequiresChannels(t *testing.T) {
	o := &options{configPath: writeConfig(t, "indicator: {hold_ms: 500}\n")}
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	_, err := loadConfig(cmd, o, true)
	require.ErrorContains(t, err, "0 channels")
}
