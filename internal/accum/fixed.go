// internal/accum/fixed.go
package accum

import (
	"errors"
	"fmt"
	"math"
)

// Femto is the number of internal units per Ah or Wh.
const Femto = 1e15

// subMicro is the pre-scale applied before the first truncation.
const subMicro = 1e6

// two63 bounds the per-sample increment; totals themselves are unbounded.
const two63 = 9223372036854775808.0

var (
	// ErrOverflow means a per-sample increment is non-finite or exceeds int64.
	ErrOverflow = errors.New("accum: increment overflow")

	// ErrBadRate means the sample rate cannot produce a scale factor.
	ErrBadRate = errors.New("accum: invalid sample rate")
)

// ScaleFactor returns femto-units per amp per sample for rate Hz.
// The evaluation order is fixed so totals match existing captures.
func ScaleFactor(rate float64) (float64, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: %v", ErrBadRate, rate)
	}
	return (Femto * (1.0 / rate)) / 3600, nil
}

// Increment converts one instantaneous value (A or W) into femto-units:
//
//	trunc(trunc(trunc(v*1e6) * scale) / 1e6)
//
// The three truncations must not be folded into one.
func Increment(v, scale float64) (int64, error) {
	a := math.Trunc(v * subMicro)
	b := math.Trunc(a * scale)
	c := math.Trunc(b / subMicro)

	if math.IsNaN(c) || c >= two63 || c < -two63 {
		return 0, fmt.Errorf("%w: value=%g scale=%g", ErrOverflow, v, scale)
	}
	return int64(c), nil
}
