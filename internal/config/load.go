// internal/config/load.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the DI-1100 command set and the acquisition script
// the tool replaces.
const (
	DefaultSignature      = "VID:PID=0683"
	DefaultBaud           = 1382400
	DefaultCommandDelayMs = 100
	DefaultEchoPollMs     = 10
	DefaultEchoAttempts   = 200
	DefaultSettleMs       = 1000

	DefaultRate       = 10000
	DefaultDuration   = 20
	DefaultDecimation = 1
	DefaultBatch      = 32
	DefaultPollUs     = 500
	DefaultBacklog    = 64 * 1024

	DefaultIndicatorBaud    = 115200
	DefaultIndicatorTimeout = 100
	DefaultIndicatorHoldMs  = 2000

	DefaultStatusTimeoutMs = 2000
)

// Default returns a normalized configuration with no file behind it.
func Default() *Config {
	cfg := &Config{
		Acquisition: AcquisitionConfig{
			Channels: []int{0, 1, 2},
			Rate:     DefaultRate,
			Duration: DefaultDuration,
		},
	}
	Normalize(cfg)
	return cfg
}

// Load reads a YAML file. An empty path returns Default().
// The result is NOT validated; callers apply flag overrides first,
// then Validate, then Normalize.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
