// internal/accum/offsets.go
package accum

import (
	"errors"
	"fmt"
)

// ErrOffsetsCommitted is returned when an offset is written after accumulation started.
var ErrOffsetsCommitted = errors.New("accum: zero offsets already committed")

// OffsetTable holds per-channel current offsets in amps.
// It is writable only until Commit; offsets are never applied retroactively.
type OffsetTable struct {
	offsets   map[int]float64
	committed bool
}

// NewOffsetTable returns a table with channels 1 and 2 at zero.
func NewOffsetTable() *OffsetTable {
	return &OffsetTable{offsets: map[int]float64{1: 0, 2: 0}}
}

// Set stores the offset for ch (amps).
func (t *OffsetTable) Set(ch int, amps float64) error {
	if t.committed {
		return fmt.Errorf("%w (channel %d)", ErrOffsetsCommitted, ch)
	}
	if ch < 1 {
		return fmt.Errorf("accum: invalid channel %d", ch)
	}
	t.offsets[ch] = amps
	return nil
}

// SetMicroAmps stores an offset given in µA, scaled the same way as captured logs.
func (t *OffsetTable) SetMicroAmps(ch int, ua int64) error {
	return t.Set(ch, float64(ua)*1e-6)
}

// Commit freezes the table.
func (t *OffsetTable) Commit() { t.committed = true }

// Committed reports whether Commit was called.
func (t *OffsetTable) Committed() bool { return t.committed }

// Offset returns the offset for ch; unknown channels read as zero.
func (t *OffsetTable) Offset(ch int) float64 {
	if t == nil {
		return 0
	}
	return t.offsets[ch]
}
