// internal/config/config.go
package config

// Config is the on-disk shape of a dataq run.
type Config struct {
	Device      DeviceConfig      `yaml:"device"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Indicator   IndicatorConfig   `yaml:"indicator"`
	Status      StatusConfig      `yaml:"status"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	// Signature is matched against each endpoint's hardware id.
	Signature string `yaml:"signature"`
	Baud      int    `yaml:"baud"`

	CommandDelayMs int `yaml:"command_delay_ms"` // pause after every write
	EchoPollMs     int `yaml:"echo_poll_ms"`
	EchoAttempts   int `yaml:"echo_attempts"` // echo wait = attempts * poll
	SettleMs       int `yaml:"settle_ms"`     // after stop, before flush + close
}

// ---- ACQUISITION ----

type AcquisitionConfig struct {
	Channels   []int   `yaml:"channels"`
	Rate       int     `yaml:"rate"`       // requested samples/sec
	Duration   float64 `yaml:"duration_s"` // used when Samples == 0
	Samples    int     `yaml:"samples"`
	Decimation int     `yaml:"decimation"`
	FilterMode int     `yaml:"filter_mode"` // 0 last point, 1 average, 2 max, 3 min
	Batch      int     `yaml:"batch"`       // samples per chunk read

	// MarkerPosition is the scan-list position whose low bits carry the
	// digital marker. nil means position 0; -1 disables masking.
	MarkerPosition *int `yaml:"marker_position"`

	PollIntervalUs int  `yaml:"poll_interval_us"`
	BacklogLimit   int  `yaml:"backlog_limit"` // bytes waiting before the overflow warning
	FailOnOverflow bool `yaml:"fail_on_overflow"`
}

// ---- INDICATOR ----

type IndicatorConfig struct {
	Baud      int      `yaml:"baud"`
	TimeoutMs int      `yaml:"timeout_ms"`
	HoldMs    int      `yaml:"hold_ms"`
	Colors    []string `yaml:"colors"`
}

// ---- STATUS ----

// StatusConfig enables status publication to a Modbus TCP endpoint.
// An empty Endpoint disables it.
type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}
