// internal/writer/meter_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/flogmeter/internal/status"
)

// meterWriter mirrors one meter block into one target.
type meterWriter struct {
	plan TargetPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

func newMeterWriter(plan TargetPlan, cli endpointClient) *meterWriter {
	return &meterWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last: status.Snapshot{
			Health: status.HealthUnknown,
		},
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}
}

// WriteStatus delivers a snapshot into the target block.
// On any write failure, the next successful call will re-assert the full block.
func (mw *meterWriter) WriteStatus(s status.Snapshot) error {
	if mw.cli == nil {
		return fmt.Errorf("meter writer: missing client for endpoint %s", mw.plan.Endpoint)
	}

	regs, err := status.Encode(s)
	if err != nil {
		return fmt.Errorf("meter writer: %w", err)
	}

	baseAddr := mw.baseAddr()
	unitID := mw.plan.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if mw.needFull {
		copy(regs[status.SlotDeviceNameStart:], mw.nameRegs)

		if err := mw.cli.WriteRegisters(unitID, baseAddr, regs); err != nil {
			mw.needFull = true
			return fmt.Errorf("meter writer: full block write failed: %w", err)
		}

		mw.needFull = false
		mw.last = s
		return nil
	}

	var errs []string

	// Slot 0: health_code
	if mw.last.Health != s.Health {
		if err := mw.cli.WriteRegisters(unitID, baseAddr+status.SlotHealthCode, []uint16{s.Health}); err != nil {
			errs = append(errs, fmt.Sprintf("slot0 health write failed: %v", err))
		} else {
			mw.last.Health = s.Health
		}
	}

	// Slot 1: last_error_code
	if mw.last.LastErrorCode != s.LastErrorCode {
		if err := mw.cli.WriteRegisters(unitID, baseAddr+status.SlotLastErrorCode, []uint16{s.LastErrorCode}); err != nil {
			errs = append(errs, fmt.Sprintf("slot1 last_error write failed: %v", err))
		} else {
			mw.last.LastErrorCode = s.LastErrorCode
		}
	}

	// Slot 2: seconds_in_error
	if mw.last.SecondsInError != s.SecondsInError {
		if err := mw.cli.WriteRegisters(unitID, baseAddr+status.SlotSecondsInError, []uint16{s.SecondsInError}); err != nil {
			errs = append(errs, fmt.Sprintf("slot2 seconds write failed: %v", err))
		} else {
			mw.last.SecondsInError = s.SecondsInError
		}
	}

	// Slots 3..22: samples + totals, one write so readers see a consistent set
	if mw.last.Samples != s.Samples {
		totals := regs[status.SlotSamplesStart:status.SlotReserved]
		if err := mw.cli.WriteRegisters(unitID, baseAddr+status.SlotSamplesStart, totals); err != nil {
			errs = append(errs, fmt.Sprintf("totals write failed: %v", err))
		} else {
			mw.last.Samples = s.Samples
			mw.last.AhTotal = s.AhTotal
			mw.last.WhTotal = s.WhTotal
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt; re-assert on next success.
		mw.needFull = true
		return errors.New("meter writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (mw *meterWriter) baseAddr() uint16 {
	// Each meter owns a fixed SlotsPerDevice block.
	return mw.plan.BaseSlot * status.SlotsPerDevice
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < status.DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
