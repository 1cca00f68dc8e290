// internal/config/normalize.go
package config

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Device
	if d.Signature == "" {
		d.Signature = DefaultSignature
	}
	if d.Baud == 0 {
		d.Baud = DefaultBaud
	}
	if d.CommandDelayMs == 0 {
		d.CommandDelayMs = DefaultCommandDelayMs
	}
	if d.EchoPollMs == 0 {
		d.EchoPollMs = DefaultEchoPollMs
	}
	if d.EchoAttempts == 0 {
		d.EchoAttempts = DefaultEchoAttempts
	}
	if d.SettleMs == 0 {
		d.SettleMs = DefaultSettleMs
	}

	a := &cfg.Acquisition
	if a.Rate == 0 {
		a.Rate = DefaultRate
	}
	// samples take precedence, so a duration is only filled in when
	// neither length was given
	if a.Samples == 0 && a.Duration == 0 {
		a.Duration = DefaultDuration
	}
	if a.Decimation == 0 {
		a.Decimation = DefaultDecimation
	}
	if a.Batch == 0 {
		a.Batch = DefaultBatch
	}
	if a.MarkerPosition == nil {
		zero := 0
		a.MarkerPosition = &zero
	}
	if a.PollIntervalUs == 0 {
		a.PollIntervalUs = DefaultPollUs
	}
	if a.BacklogLimit == 0 {
		a.BacklogLimit = DefaultBacklog
	}

	ind := &cfg.Indicator
	if ind.Baud == 0 {
		ind.Baud = DefaultIndicatorBaud
	}
	if ind.TimeoutMs == 0 {
		ind.TimeoutMs = DefaultIndicatorTimeout
	}
	if ind.HoldMs == 0 {
		ind.HoldMs = DefaultIndicatorHoldMs
	}

	st := &cfg.Status
	if st.Endpoint == "" {
		return
	}
	if st.TimeoutMs == 0 {
		st.TimeoutMs = DefaultStatusTimeoutMs
	}
	// device_name is stored in 8 registers
	if len(st.DeviceName) > 16 {
		st.DeviceName = st.DeviceName[:16]
	}
}

// Marker returns the normalized marker position.
func (a AcquisitionConfig) Marker() int {
	if a.MarkerPosition == nil {
		return 0
	}
	return *a.MarkerPosition
}
