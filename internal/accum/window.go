// internal/accum/window.go
package accum

import (
	"fmt"
	"math"
)

// WindowFromSeconds converts a window period to a sample count at rate Hz.
// A period that is not a whole number of samples rounds up, so the window
// closes on the first sample at or past the period; exact reports false then.
func WindowFromSeconds(rate, seconds float64) (size uint64, exact bool, err error) {
	x := rate * seconds
	if !(x > 0) || math.IsInf(x, 0) {
		return 0, false, fmt.Errorf("accum: invalid window %vs at %v Hz", seconds, rate)
	}

	r := math.Round(x)
	if math.Abs(r-x) <= 0.000001 && r >= 1 {
		return uint64(r), true, nil
	}
	return uint64(math.Ceil(x)), false, nil
}
