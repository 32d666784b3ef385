// internal/frame/frame.go
package frame

import (
	"errors"
	"fmt"
)

// Marker is the first byte of every definite-length block response.
const Marker byte = '#'

// maxPrealloc caps the up-front payload allocation; larger blocks grow by append.
const maxPrealloc = 1 << 20

var (
	// ErrMalformedFrame means the header does not match #<N><L>.
	ErrMalformedFrame = errors.New("frame: malformed frame")

	// ErrTruncatedSource means the source ended, closed or timed out before
	// the declared length was satisfied.
	ErrTruncatedSource = errors.New("frame: truncated source")

	// ErrDesync means bytes other than a line terminator followed the payload.
	// The stream position is unknown afterwards; there is no resynchronization.
	ErrDesync = fmt.Errorf("%w: unexpected trailing data", ErrMalformedFrame)
)

// Source delivers the physical reads of one response.
// Next returns at least one byte or a non-nil error. The returned slice is
// only valid until the following call.
type Source interface {
	Next() ([]byte, error)
}

// Frame is one reassembled block response.
type Frame struct {
	Declared int    // L from the header
	Payload  []byte // exactly Declared bytes, header stripped
	Trailing int    // bytes received after the payload (terminator included)
}

// Reassemble parses the block header from first (pulling more reads from src
// if the header itself is fragmented) and collects exactly L payload bytes.
func Reassemble(first []byte, src Source) (Frame, error) {
	buf := append([]byte(nil), first...)

	need := func(n int) error {
		for len(buf) < n {
			chunk, err := src.Next()
			if err != nil {
				return fmt.Errorf("%w: header: %w", ErrTruncatedSource, err)
			}
			buf = append(buf, chunk...)
		}
		return nil
	}

	// ---- marker ----
	if err := need(1); err != nil {
		return Frame{}, err
	}
	if buf[0] != Marker {
		return Frame{}, fmt.Errorf("%w: marker 0x%02x", ErrMalformedFrame, buf[0])
	}

	// ---- digit count ----
	if err := need(2); err != nil {
		return Frame{}, err
	}
	d := buf[1]
	if d < '1' || d > '9' {
		return Frame{}, fmt.Errorf("%w: digit count %q", ErrMalformedFrame, d)
	}
	digits := int(d - '0')

	// ---- length ----
	if err := need(2 + digits); err != nil {
		return Frame{}, err
	}
	declared, err := parseLength(buf[2 : 2+digits])
	if err != nil {
		return Frame{}, err
	}

	// ---- payload ----
	payload := make([]byte, 0, min(declared, maxPrealloc))
	rest := buf[2+digits:]

	take := min(len(rest), declared)
	payload = append(payload, rest[:take]...)
	trailing := rest[take:]
	remaining := declared - take

	for remaining > 0 {
		chunk, err := src.Next()
		if err != nil {
			return Frame{}, fmt.Errorf("%w: %d of %d bytes missing: %w", ErrTruncatedSource, remaining, declared, err)
		}
		take = min(len(chunk), remaining)
		payload = append(payload, chunk[:take]...)
		trailing = chunk[take:]
		remaining -= take
	}

	if !isTerminator(trailing) {
		return Frame{}, fmt.Errorf("%w (%d bytes)", ErrDesync, len(trailing))
	}

	return Frame{
		Declared: declared,
		Payload:  payload,
		Trailing: len(trailing),
	}, nil
}

// parseLength accepts ASCII decimal digits only (no sign, no spaces).
func parseLength(b []byte) (int, error) {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: length field %q", ErrMalformedFrame, b)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func isTerminator(b []byte) bool {
	switch string(b) {
	case "", "\n", "\r\n":
		return true
	}
	return false
}
