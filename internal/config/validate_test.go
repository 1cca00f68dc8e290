// internal/config/validate_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// helper to build an acquisition config quickly
func acq(channels []int, rate int, duration float64, samples int) *Config {
	return &Config{
		Acquisition: AcquisitionConfig{
			Channels: channels,
			Rate:     rate,
			Duration: duration,
			Samples:  samples,
		},
	}
}

func intp(v int) *int { return &v }

// ---- tests ----

func TestValidate_DefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ChannelOutOfRange(t *testing.T) {
	if err := Validate(acq([]int{0, 4}, 1000, 1, 0)); err == nil {
		t.Fatalf("expected channel range error, got nil")
	}
}

func TestValidate_DuplicateChannel(t *testing.T) {
	if err := Validate(acq([]int{1, 1}, 1000, 1, 0)); err == nil {
		t.Fatalf("expected duplicate channel error, got nil")
	}
}

func TestValidate_TooManyChannels(t *testing.T) {
	if err := Validate(acq([]int{0, 1, 2, 3, 0}, 1000, 1, 0)); err == nil {
		t.Fatalf("expected channel count error, got nil")
	}
}

func TestValidate_NoChannels(t *testing.T) {
	if err := Validate(acq(nil, 1000, 1, 0)); err == nil {
		t.Fatalf("expected channel count error, got nil")
	}
}

func TestValidate_ScanOrderNotSorted(t *testing.T) {
	// interleave order is the caller's; descending is legal
	if err := Validate(acq([]int{3, 0, 2}, 1000, 1, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NegativeRate(t *testing.T) {
	if err := Validate(acq([]int{0}, -5, 1, 0)); err == nil {
		t.Fatalf("expected rate error, got nil")
	}
}

func TestValidate_MarkerPosition(t *testing.T) {
	cfg := acq([]int{0, 1}, 1000, 1, 0)

	cfg.Acquisition.MarkerPosition = intp(-1)
	if err := Validate(cfg); err != nil {
		t.Fatalf("marker -1 should disable masking: %v", err)
	}

	cfg.Acquisition.MarkerPosition = intp(2)
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected marker position error, got nil")
	}
}

func TestValidate_FilterMode(t *testing.T) {
	cfg := acq([]int{0}, 1000, 1, 0)
	cfg.Acquisition.FilterMode = 4
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected filter mode error, got nil")
	}
}

func TestValidate_StatusNameASCII(t *testing.T) {
	cfg := acq([]int{0}, 1000, 1, 0)
	cfg.Status = StatusConfig{Endpoint: "127.0.0.1:502", DeviceName: "DI-1100 µ"}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected ASCII error, got nil")
	}
}

func TestValidate_StatusWithoutEndpoint(t *testing.T) {
	cfg := acq([]int{0}, 1000, 1, 0)
	cfg.Status = StatusConfig{UnitID: 3}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected endpoint error, got nil")
	}
}

func TestNormalize_SamplesKeepDurationZero(t *testing.T) {
	cfg := acq([]int{0}, 1000, 0, 500)
	Normalize(cfg)

	if cfg.Acquisition.Duration != 0 {
		t.Fatalf("duration should stay 0 when samples given, got %v", cfg.Acquisition.Duration)
	}
	if cfg.Acquisition.Batch != DefaultBatch {
		t.Fatalf("batch default not applied: %d", cfg.Acquisition.Batch)
	}
	if cfg.Acquisition.Marker() != 0 {
		t.Fatalf("marker default should be 0, got %d", cfg.Acquisition.Marker())
	}
	if cfg.Device.Baud != DefaultBaud {
		t.Fatalf("baud default not applied: %d", cfg.Device.Baud)
	}
}

func TestNormalize_TruncatesDeviceName(t *testing.T) {
	cfg := acq([]int{0}, 1000, 1, 0)
	cfg.Status = StatusConfig{Endpoint: "ep", DeviceName: "ABCDEFGHIJKLMNOPQRS"}
	Normalize(cfg)

	if len(cfg.Status.DeviceName) != 16 {
		t.Fatalf("device name not truncated: %q", cfg.Status.DeviceName)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataq.yaml")
	body := `
device:
  signature: "VID:PID=0683"
acquisition:
  channels: [2, 0]
  rate: 7000
  samples: 4096
  marker_position: -1
status:
  endpoint: "127.0.0.1:1502"
  unit_id: 4
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	Normalize(cfg)

	if got := cfg.Acquisition.Channels; len(got) != 2 || got[0] != 2 || got[1] != 0 {
		t.Fatalf("channels: got %v", got)
	}
	if cfg.Acquisition.Marker() != -1 {
		t.Fatalf("marker: got %d want -1", cfg.Acquisition.Marker())
	}
	if cfg.Status.TimeoutMs != DefaultStatusTimeoutMs {
		t.Fatalf("status timeout default not applied: %d", cfg.Status.TimeoutMs)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("acquisition:\n  chanels: [0]\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown field error, got nil")
	}
}

func TestValidateControl_SkipsAcquisition(t *testing.T) {
	cfg := &Config{Indicator: IndicatorConfig{HoldMs: 500}}

	if err := ValidateControl(cfg); err != nil {
		t.Fatalf("expected control config to validate, got %v", err)
	}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected full validation to require channels")
	}

	cfg.Indicator.Baud = -1
	if err := ValidateControl(cfg); err == nil {
		t.Fatalf("expected negative indicator baud to fail")
	}
}
