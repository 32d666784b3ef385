// internal/sample/sample.go
package sample

import (
	"encoding/binary"
	"math"
)

// Size is the byte length of one (voltage, current) unit.
const Size = 8

// Sample is one decoded fast-log reading.
type Sample struct {
	Voltage float64 // V
	Current float64 // A, uncorrected
}

// Decode reads one unit: float32 LE voltage followed by float32 LE current.
// b must hold at least Size bytes.
func Decode(b []byte) Sample {
	_ = b[Size-1]
	return Sample{
		Voltage: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))),
		Current: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))),
	}
}

// Count returns the number of whole units in n bytes.
func Count(n int) int { return n / Size }

// Whole trims buf to a multiple of Size, dropping a stray terminator byte.
func Whole(buf []byte) []byte {
	return buf[:Count(len(buf))*Size]
}

// DecodeAll decodes floor(len(buf)/Size) units in stream order.
func DecodeAll(buf []byte) []Sample {
	n := Count(len(buf))
	out := make([]Sample, n)
	for i := 0; i < n; i++ {
		out[i] = Decode(buf[i*Size:])
	}
	return out
}

// Encode is the inverse of Decode, used for captures and fixtures.
func Encode(dst []byte, s Sample) {
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(float32(s.Voltage)))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(float32(s.Current)))
}

// EncodeAll packs samples back-to-back.
func EncodeAll(samples []Sample) []byte {
	out := make([]byte, len(samples)*Size)
	for i, s := range samples {
		Encode(out[i*Size:], s)
	}
	return out
}
