// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
)

// MaxChannel is the highest analog input on the DI-1100.
const MaxChannel = 3

// Validate checks configuration correctness.
// It performs declarative validation only; zero values mean "use default".
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	if err := validateDevice(cfg.Device); err != nil {
		return err
	}
	if err := validateAcquisition(cfg.Acquisition); err != nil {
		return err
	}
	if err := validateIndicator(cfg.Indicator); err != nil {
		return err
	}
	return validateStatus(cfg.Status)
}

// ValidateControl checks what device control without acquisition needs
// (LED, port listing); the acquisition section is not consulted.
func ValidateControl(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	if err := validateDevice(cfg.Device); err != nil {
		return err
	}
	if err := validateIndicator(cfg.Indicator); err != nil {
		return err
	}
	return validateStatus(cfg.Status)
}

// ------------------------------------------------------------
// DEVICE
// ------------------------------------------------------------

func validateDevice(d DeviceConfig) error {
	if d.Baud < 0 {
		return fmt.Errorf("device: baud %d must be > 0", d.Baud)
	}
	if d.CommandDelayMs < 0 || d.EchoPollMs < 0 || d.SettleMs < 0 {
		return errors.New("device: delays must not be negative")
	}
	if d.EchoAttempts < 0 {
		return fmt.Errorf("device: echo_attempts %d must be > 0", d.EchoAttempts)
	}
	return nil
}

// ------------------------------------------------------------
// ACQUISITION
// ------------------------------------------------------------

func validateAcquisition(a AcquisitionConfig) error {
	if len(a.Channels) == 0 || len(a.Channels) > MaxChannel+1 {
		return fmt.Errorf("acquisition: %d channels given, want 1-%d", len(a.Channels), MaxChannel+1)
	}
	seen := make(map[int]bool, len(a.Channels))
	for pos, ch := range a.Channels {
		if ch < 0 || ch > MaxChannel {
			return fmt.Errorf("acquisition: channel %d at position %d out of range [0,%d]", ch, pos, MaxChannel)
		}
		if seen[ch] {
			return fmt.Errorf("acquisition: channel %d listed twice", ch)
		}
		seen[ch] = true
	}
	if a.Rate < 0 {
		return fmt.Errorf("acquisition: rate %d must be > 0", a.Rate)
	}
	if a.Duration < 0 {
		return fmt.Errorf("acquisition: duration %v must be > 0", a.Duration)
	}
	if a.Samples < 0 {
		return fmt.Errorf("acquisition: samples %d must be > 0", a.Samples)
	}
	if a.Decimation < 0 {
		return fmt.Errorf("acquisition: decimation %d must be >= 1", a.Decimation)
	}
	if a.FilterMode < 0 || a.FilterMode > 3 {
		return fmt.Errorf("acquisition: filter_mode %d out of range [0,3]", a.FilterMode)
	}
	if a.Batch < 0 {
		return fmt.Errorf("acquisition: batch %d must be >= 1", a.Batch)
	}
	if a.MarkerPosition != nil {
		mp := *a.MarkerPosition
		if mp < -1 || mp >= len(a.Channels) {
			return fmt.Errorf("acquisition: marker_position %d out of range [-1,%d]", mp, len(a.Channels)-1)
		}
	}
	if a.PollIntervalUs < 0 || a.BacklogLimit < 0 {
		return errors.New("acquisition: poll_interval_us and backlog_limit must not be negative")
	}
	return nil
}

// ------------------------------------------------------------
// INDICATOR
// ------------------------------------------------------------

func validateIndicator(ind IndicatorConfig) error {
	if ind.Baud < 0 || ind.TimeoutMs < 0 || ind.HoldMs < 0 {
		return errors.New("indicator: values must not be negative")
	}
	return nil
}

// ------------------------------------------------------------
// STATUS (OPT-IN)
// ------------------------------------------------------------

func validateStatus(st StatusConfig) error {
	for i := 0; i < len(st.DeviceName); i++ {
		if st.DeviceName[i] > 0x7F {
			return errors.New("status: device_name must contain ASCII characters only")
		}
	}
	if st.Endpoint == "" && (st.UnitID != 0 || st.Slot != 0) {
		return errors.New("status: unit_id/slot set but no endpoint defined")
	}

	return nil
}
