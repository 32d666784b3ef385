// internal/session/errors.go
package session

import (
	"errors"

	"github.com/tamzrod/flogmeter/internal/accum"
	"github.com/tamzrod/flogmeter/internal/frame"
)

// errorKind is the metrics label for a session-ending error.
func errorKind(err error) string {
	switch {
	case errors.Is(err, frame.ErrDesync):
		return "desync"
	case errors.Is(err, frame.ErrMalformedFrame):
		return "malformed"
	case frame.IsTruncated(err):
		return "truncated"
	case errors.Is(err, accum.ErrOverflow):
		return "overflow"
	}
	return "other"
}
