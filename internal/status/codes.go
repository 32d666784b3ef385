// internal/status/codes.go
package status

import (
	"errors"

	"github.com/tamzrod/flogmeter/internal/accum"
	"github.com/tamzrod/flogmeter/internal/config"
	"github.com/tamzrod/flogmeter/internal/frame"
)

// Error codes written to SlotLastErrorCode.
const (
	CodeNone          uint16 = 0
	CodeGeneric       uint16 = 1
	CodeMalformed     uint16 = 10
	CodeDesync        uint16 = 11
	CodeTruncated     uint16 = 12
	CodeOverflow      uint16 = 20
	CodeEmptyBlock    uint16 = 21
	CodeConfiguration uint16 = 30
)

// CodeFor maps a session error onto a register code.
// Errors exposing Code() uint16 pass through unchanged.
func CodeFor(err error) uint16 {
	if err == nil {
		return CodeNone
	}

	type coder interface{ Code() uint16 }
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	switch {
	case errors.Is(err, frame.ErrDesync):
		return CodeDesync
	case errors.Is(err, frame.ErrMalformedFrame):
		return CodeMalformed
	case errors.Is(err, frame.ErrTruncatedSource):
		return CodeTruncated
	case errors.Is(err, accum.ErrOverflow):
		return CodeOverflow
	case errors.Is(err, accum.ErrEmptyBlock):
		return CodeEmptyBlock
	case errors.Is(err, config.ErrMissingConfiguration):
		return CodeConfiguration
	}
	return CodeGeneric
}
