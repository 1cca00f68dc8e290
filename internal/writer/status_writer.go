// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kushal-thapa/dataq/internal/status"
)

// StatusWriter is the delivery-only contract for acquisition status.
// It receives a snapshot and writes it verbatim.
// No logic, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter writes full blocks on first use and after any
// failure, and only changed slots otherwise.
type deviceStatusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

var _ StatusWriter = (*deviceStatusWriter)(nil)

// NewStatusWriter builds a writer for plan over cli.
func NewStatusWriter(plan StatusPlan, cli endpointClient) StatusWriter {
	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: status.EncodeName(plan.DeviceName),
	}
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr, sw.fullBlockRegs(s)); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed ep=%s unit=%d: %w", sw.plan.Endpoint, sw.plan.UnitID, err)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: contiguous span covering every changed live slot
	// ------------------------------------------------------------
	prev := status.Encode(sw.last)
	next := status.Encode(s)

	first, last := -1, -1
	for i := 0; i < status.SlotReservedStart; i++ {
		if prev[i] != next[i] {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil
	}

	if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr+uint16(first), next[first:last+1]); err != nil {
		// Any partial failure introduces doubt; re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join([]string{
			fmt.Sprintf("slots %d-%d write failed", first, last),
			err.Error(),
		}, ": "))
	}

	sw.last = s
	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

func (sw *deviceStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)

	// Device name always lives at the end of the block
	for i := 0; i < status.SlotDeviceNameSlots && i < len(sw.nameRegs); i++ {
		regs[status.SlotDeviceNameStart+i] = sw.nameRegs[i]
	}

	return regs
}
