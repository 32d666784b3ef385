// internal/frame/source.go
package frame

import (
	"errors"
	"io"
)

// DefaultReadSize matches the receive size used against the instrument.
const DefaultReadSize = 4096

// ReaderSource adapts an io.Reader to Source, one Read per Next.
type ReaderSource struct {
	r   io.Reader
	buf []byte
}

// NewReaderSource wraps r. size <= 0 selects DefaultReadSize.
func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = DefaultReadSize
	}
	return &ReaderSource{r: r, buf: make([]byte, size)}
}

// Next performs one physical read. Zero-byte reads without an error are retried.
func (s *ReaderSource) Next() ([]byte, error) {
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			return s.buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// IsTruncated reports whether err ends a session because the source gave out.
func IsTruncated(err error) bool {
	return errors.Is(err, ErrTruncatedSource) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
