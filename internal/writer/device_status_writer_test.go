// internal/writer/device_status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/kushal-thapa/dataq/internal/config"
	"github.com/kushal-thapa/dataq/internal/status"
)

// ---- fake endpoint client ----

type fakeEndpointClient struct {
	calls        int
	failNext     bool
	lastUnit     uint8
	lastRegsAddr uint16
	lastRegs     []uint16
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	f.calls++
	if f.failNext {
		f.failNext = false
		return errors.New("write failed")
	}
	f.lastUnit = unitID
	f.lastRegsAddr = addr
	f.lastRegs = append([]uint16(nil), regs...)
	return nil
}

func testPlan() StatusPlan {
	return StatusPlan{
		Endpoint:   "status-endpoint",
		UnitID:     1,
		BaseSlot:   2,
		DeviceName: "DI-1100",
	}
}

// ---- tests ----

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)

	// ---- first write: FULL ASSERT ----
	first := status.Snapshot{
		Health:     status.HealthAcquiring,
		ActualRate: 10000,
		Samples:    200000,
		Channels:   3,
		Decimation: 1,
	}
	if err := sw.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(cli.lastRegs))
	}
	if cli.lastRegsAddr != 2*status.SlotsPerDevice {
		t.Fatalf("unexpected base addr: got=%d want=%d", cli.lastRegsAddr, 2*status.SlotsPerDevice)
	}

	expectedNameRegs := status.EncodeName("DI-1100")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], expectedNameRegs[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := first
	second.Health = status.HealthOK
	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.lastRegs) != 1 || cli.lastRegsAddr != 2*status.SlotsPerDevice+status.SlotHealthCode {
		t.Fatalf("expected single health slot write, got addr=%d len=%d", cli.lastRegsAddr, len(cli.lastRegs))
	}
	if cli.lastRegs[0] != status.HealthOK {
		t.Fatalf("health: got=%d want=%d", cli.lastRegs[0], status.HealthOK)
	}
}

func TestIncrementalSpanCoversChangedSlots(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthAcquiring}); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}

	next := status.Snapshot{Health: status.HealthError, LastErrorCode: status.ErrCodeTransport, ActualRate: 7000}
	if err := sw.WriteStatus(next); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	base := uint16(2 * status.SlotsPerDevice)
	if cli.lastRegsAddr != base {
		t.Fatalf("span should start at health slot: got=%d want=%d", cli.lastRegsAddr, base)
	}
	if len(cli.lastRegs) != status.SlotActualRateLo+1 {
		t.Fatalf("span length: got=%d want=%d", len(cli.lastRegs), status.SlotActualRateLo+1)
	}
	if cli.lastRegs[status.SlotActualRateLo] != 7000 {
		t.Fatalf("rate lo: got=%d", cli.lastRegs[status.SlotActualRateLo])
	}
}

func TestUnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)

	s := status.Snapshot{Health: status.HealthOK}
	_ = sw.WriteStatus(s)
	_ = sw.WriteStatus(s)

	if cli.calls != 1 {
		t.Fatalf("expected 1 write, got %d", cli.calls)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthAcquiring})

	cli.failNext = true
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err == nil {
		t.Fatalf("expected write error, got nil")
	}

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err != nil {
		t.Fatalf("recovery write failed: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block after failure, got %d regs", len(cli.lastRegs))
	}
}

func TestBuildPlanDisabled(t *testing.T) {
	if _, ok := BuildPlan(config.StatusConfig{}); ok {
		t.Fatalf("empty endpoint should disable status")
	}

	w, closer, err := Build(config.StatusConfig{})
	if err != nil || w != nil {
		t.Fatalf("disabled build: w=%v err=%v", w, err)
	}
	if err := closer(); err != nil {
		t.Fatalf("closer: %v", err)
	}
}
