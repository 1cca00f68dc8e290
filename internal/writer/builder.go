// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/kushal-thapa/dataq/internal/config"
	wmodbus "github.com/kushal-thapa/dataq/internal/writer/modbus"
)

// BuildPlan converts the status config into a StatusPlan.
// ok is false when status publication is disabled.
func BuildPlan(c cfg.StatusConfig) (plan StatusPlan, ok bool) {
	if c.Endpoint == "" {
		return StatusPlan{}, false
	}
	return StatusPlan{
		Endpoint:   c.Endpoint,
		UnitID:     c.UnitID,
		BaseSlot:   c.Slot,
		DeviceName: c.DeviceName,
	}, true
}

// Build connects a status writer. A disabled config yields a nil
// writer and a no-op closer.
func Build(c cfg.StatusConfig) (StatusWriter, func() error, error) {
	plan, ok := BuildPlan(c)
	if !ok {
		return nil, func() error { return nil }, nil
	}

	cli, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: plan.Endpoint,
		Timeout:  time.Duration(c.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	return NewStatusWriter(plan, cli), cli.Close, nil
}
