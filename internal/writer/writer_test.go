// internal/writer/writer_test.go
package writer

import (
	"errors"
	"math/big"
	"testing"

	"github.com/tamzrod/flogmeter/internal/status"
)

type regWrite struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	writes  []regWrite
	failing bool
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.failing {
		return errors.New("boom")
	}
	cp := append([]uint16(nil), regs...)
	f.writes = append(f.writes, regWrite{unitID: unitID, addr: addr, regs: cp})
	return nil
}

func (f *fakeEndpointClient) last() regWrite {
	return f.writes[len(f.writes)-1]
}

func testPlan(name string, slot uint16) Plan {
	return Plan{Targets: []TargetPlan{{
		Transport:  "modbus",
		Endpoint:   "meter-endpoint",
		UnitID:     3,
		BaseSlot:   slot,
		DeviceName: name,
	}}}
}

func TestFullAssertCarriesDeviceName(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan("NGM-CH1", 2)

	w := New(plan, map[string]endpointClient{"modbus|meter-endpoint": cli})

	if err := w.Write(status.Snapshot{Health: status.HealthOK, Samples: 8}); err != nil {
		t.Fatalf("first write: %v", err)
	}

	if len(cli.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(cli.writes))
	}
	got := cli.last()
	if got.unitID != 3 {
		t.Fatalf("unit id: got=%d want=3", got.unitID)
	}
	if got.addr != 2*status.SlotsPerDevice {
		t.Fatalf("base address: got=%d want=%d", got.addr, 2*status.SlotsPerDevice)
	}
	if len(got.regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block (%d regs), got %d", status.SlotsPerDevice, len(got.regs))
	}

	want := encodeDeviceNameRegs("NGM-CH1")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if got.regs[slot] != want[i] {
			t.Fatalf("device name slot %d: got=%d want=%d", slot, got.regs[slot], want[i])
		}
	}
}

func TestIncrementalWrites(t *testing.T) {
	cli := &fakeEndpointClient{}
	w := New(testPlan("M", 0), map[string]endpointClient{"modbus|meter-endpoint": cli})

	if err := w.Write(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	cli.writes = nil

	// only totals changed
	s := status.Snapshot{
		Health:  status.HealthOK,
		Samples: 8,
		AhTotal: big.NewInt(24),
		WhTotal: big.NewInt(168),
	}
	if err := w.Write(s); err != nil {
		t.Fatalf("totals write: %v", err)
	}
	if len(cli.writes) != 1 {
		t.Fatalf("expected a single totals write, got %d", len(cli.writes))
	}
	tw := cli.last()
	if tw.addr != status.SlotSamplesStart {
		t.Fatalf("totals address: got=%d want=%d", tw.addr, status.SlotSamplesStart)
	}
	if len(tw.regs) != status.SlotReserved-status.SlotSamplesStart {
		t.Fatalf("totals width: got=%d", len(tw.regs))
	}
	ah := status.DecodeInt128(tw.regs[status.SlotAhStart-status.SlotSamplesStart:])
	if ah.Int64() != 24 {
		t.Fatalf("ah total: got=%s want=24", ah)
	}

	// unchanged snapshot writes nothing
	cli.writes = nil
	if err := w.Write(s); err != nil {
		t.Fatalf("repeat write: %v", err)
	}
	if len(cli.writes) != 0 {
		t.Fatalf("unchanged snapshot should not write, got %d writes", len(cli.writes))
	}

	// health transition writes slot 0 and 1 only
	s.Health = status.HealthError
	s.LastErrorCode = status.CodeDesync
	if err := w.Write(s); err != nil {
		t.Fatalf("health write: %v", err)
	}
	if len(cli.writes) != 2 {
		t.Fatalf("expected 2 single-slot writes, got %d", len(cli.writes))
	}
	if cli.writes[0].addr != status.SlotHealthCode || cli.writes[1].addr != status.SlotLastErrorCode {
		t.Fatalf("unexpected addresses: %d %d", cli.writes[0].addr, cli.writes[1].addr)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	w := New(testPlan("M", 0), map[string]endpointClient{"modbus|meter-endpoint": cli})

	if err := w.Write(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("first write: %v", err)
	}

	cli.failing = true
	if err := w.Write(status.Snapshot{Health: status.HealthStale}); err == nil {
		t.Fatalf("expected error while endpoint fails")
	}

	cli.failing = false
	cli.writes = nil
	if err := w.Write(status.Snapshot{Health: status.HealthStale}); err != nil {
		t.Fatalf("recovery write: %v", err)
	}
	if len(cli.writes) != 1 || len(cli.last().regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block re-assert after failure")
	}
}

func TestMissingClientFails(t *testing.T) {
	w := New(testPlan("M", 0), map[string]endpointClient{})
	if err := w.Write(status.Snapshot{}); err == nil {
		t.Fatalf("expected error for target without client")
	}
}

func TestDeviceNameSanitized(t *testing.T) {
	regs := encodeDeviceNameRegs("A\x01BCDEFGHIJKLMNOPQRS")
	if regs[0] != uint16('A')<<8|uint16('?') {
		t.Fatalf("control byte not replaced: %#04x", regs[0])
	}
	if len(regs) != status.SlotDeviceNameSlots {
		t.Fatalf("name regs: got=%d", len(regs))
	}
}
