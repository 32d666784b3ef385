// internal/rawfile/raw.go
package rawfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tamzrod/flogmeter/internal/sample"
)

// ReadSize is the physical read size for .raw files.
const ReadSize = 512

// Paths derives the file set of one recording from its base name.
func Paths(base string) (raw, meta, processed string) {
	return base + ".raw", base + ".meta", base + "_processed.csv"
}

// Recording is an opened .raw/.meta pair.
type Recording struct {
	Base         string
	Meta         Meta
	TotalSamples uint64 // whole samples in the .raw file

	raw *os.File
	br  *BlockReader
}

// Open opens <base>.raw and parses <base>.meta.
func Open(base string) (*Recording, error) {
	rawPath, metaPath, _ := Paths(base)

	mf, err := os.Open(metaPath)
	if err != nil {
		return nil, fmt.Errorf("rawfile: %w", err)
	}
	meta, err := ReadMeta(mf)
	_ = mf.Close()
	if err != nil {
		return nil, err
	}

	rf, err := os.Open(rawPath)
	if err != nil {
		return nil, fmt.Errorf("rawfile: %w", err)
	}
	st, err := rf.Stat()
	if err != nil {
		_ = rf.Close()
		return nil, fmt.Errorf("rawfile: %w", err)
	}

	return &Recording{
		Base:         base,
		Meta:         meta,
		TotalSamples: uint64(st.Size()) / sample.Size,
		raw:          rf,
		br:           NewBlockReader(rf),
	}, nil
}

// Next returns the next decoded block; io.EOF at the end of the file.
func (r *Recording) Next() ([]sample.Sample, error) { return r.br.Next() }

// Leftover is the count of bytes that did not form a whole sample at EOF.
func (r *Recording) Leftover() int { return r.br.Leftover() }

func (r *Recording) Close() error { return r.raw.Close() }

// BlockReader decodes a sample stream in ReadSize reads.
// A sample split across reads is carried to the next one.
type BlockReader struct {
	r     io.Reader
	buf   []byte
	carry []byte
	eof   bool
}

func NewBlockReader(r io.Reader) *BlockReader {
	return &BlockReader{r: r, buf: make([]byte, ReadSize)}
}

// Next returns the samples completed by one physical read.
// It may return an empty slice with a nil error for a short read.
func (b *BlockReader) Next() ([]sample.Sample, error) {
	if b.eof {
		return nil, io.EOF
	}

	n, err := b.r.Read(b.buf)
	if n > 0 {
		b.carry = append(b.carry, b.buf[:n]...)
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("rawfile: read: %w", err)
		}
		b.eof = true
	}

	whole := sample.Whole(b.carry)
	out := sample.DecodeAll(whole)
	b.carry = append(b.carry[:0], b.carry[len(whole):]...)

	if b.eof && len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}

// Leftover reports the carried bytes that never completed a sample.
func (b *BlockReader) Leftover() int { return len(b.carry) }
