// internal/status/encode.go
package status

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrRange means a total does not fit the int128 register pair.
var ErrRange = errors.New("status: total exceeds int128")

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

// Encode converts a Snapshot into the live part of a status block
// (everything except the device name). Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) ([]uint16, error) {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError

	for i := 0; i < SlotSamplesSlots; i++ {
		shift := uint(16 * (SlotSamplesSlots - 1 - i))
		regs[SlotSamplesStart+i] = uint16(s.Samples >> shift)
	}

	if err := putInt128(regs[SlotAhStart:SlotAhStart+TotalSlots], s.AhTotal); err != nil {
		return nil, fmt.Errorf("ah_total: %w", err)
	}
	if err := putInt128(regs[SlotWhStart:SlotWhStart+TotalSlots], s.WhTotal); err != nil {
		return nil, fmt.Errorf("wh_total: %w", err)
	}

	return regs, nil
}

// putInt128 writes v as big-endian two's complement across 8 registers.
func putInt128(dst []uint16, v *big.Int) error {
	if v == nil {
		return nil
	}
	if v.BitLen() > 127 {
		return ErrRange
	}

	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}

	var b [16]byte
	u.FillBytes(b[:])
	for i := 0; i < TotalSlots; i++ {
		dst[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return nil
}

// DecodeInt128 is the inverse of the register encoding, for readers and tests.
func DecodeInt128(regs []uint16) *big.Int {
	var b [16]byte
	for i := 0; i < TotalSlots && i < len(regs); i++ {
		b[2*i] = byte(regs[i] >> 8)
		b[2*i+1] = byte(regs[i])
	}
	v := new(big.Int).SetBytes(b[:])
	if b[0]&0x80 != 0 {
		v.Sub(v, two128)
	}
	return v
}
