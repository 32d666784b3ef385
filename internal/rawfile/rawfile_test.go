// internal/rawfile/rawfile_test.go
package rawfile

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/flogmeter/internal/config"
	"github.com/tamzrod/flogmeter/internal/sample"
)

const metaFixture = "Device\tNGM202\n" +
	"Channel\t1\n" +
	"Samplerate\t 250000.000 \n" +
	"Unit\tV,A\n"

func TestReadMeta(t *testing.T) {
	m, err := ReadMeta(strings.NewReader(metaFixture))
	require.NoError(t, err)
	assert.Equal(t, 250000.0, m.SampleRate)
	assert.Equal(t, "NGM202", m.Fields["Device"])
}

func TestReadMeta_Missing(t *testing.T) {
	_, err := ReadMeta(strings.NewReader("Device\tNGM202\n"))
	require.ErrorIs(t, err, config.ErrMissingConfiguration)

	_, err = ReadMeta(strings.NewReader("Samplerate\tfast\n"))
	require.ErrorIs(t, err, config.ErrMissingConfiguration)
}

func TestReadMeta_ExactKey(t *testing.T) {
	m, err := ReadMeta(strings.NewReader("SamplerateUnit\tHz\nSamplerate\t500000\n"))
	require.NoError(t, err)
	assert.Equal(t, 500000.0, m.SampleRate)
	assert.Equal(t, "Hz", m.Fields["SamplerateUnit"])
}

func fixtureSamples(n int) []sample.Sample {
	out := make([]sample.Sample, n)
	for i := range out {
		out[i] = sample.Sample{Voltage: 3.3, Current: float64(i%17) * 1e-3}
	}
	return out
}

func readAll(t *testing.T, next func() ([]sample.Sample, error)) []sample.Sample {
	t.Helper()
	var got []sample.Sample
	for {
		s, err := next()
		if errors.Is(err, io.EOF) {
			return got
		}
		require.NoError(t, err)
		got = append(got, s...)
	}
}

func TestBlockReader_CarriesSplitSamples(t *testing.T) {
	want := sample.DecodeAll(sample.EncodeAll(fixtureSamples(200)))
	raw := sample.EncodeAll(want)

	// one-byte reads split every sample
	br := NewBlockReader(iotest.OneByteReader(bytes.NewReader(raw)))
	got := readAll(t, br.Next)

	assert.Equal(t, want, got)
	assert.Zero(t, br.Leftover())
}

func TestBlockReader_TrailingPartial(t *testing.T) {
	raw := append(sample.EncodeAll(fixtureSamples(3)), 0x0a, 0x01, 0x02)

	br := NewBlockReader(bytes.NewReader(raw))
	got := readAll(t, br.Next)

	assert.Len(t, got, 3)
	assert.Equal(t, 3, br.Leftover())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "flog-20200901T140613-ch1")
	rawPath, metaPath, out := Paths(base)
	assert.Equal(t, base+"_processed.csv", out)

	samples := fixtureSamples(1000)
	require.NoError(t, os.WriteFile(rawPath, sample.EncodeAll(samples), 0o644))
	require.NoError(t, os.WriteFile(metaPath, []byte(metaFixture), 0o644))

	rec, err := Open(base)
	require.NoError(t, err)
	defer rec.Close()

	assert.Equal(t, uint64(1000), rec.TotalSamples)
	assert.Equal(t, 250000.0, rec.Meta.SampleRate)
	assert.Len(t, readAll(t, rec.Next), 1000)
}

func TestOpen_NoMeta(t *testing.T) {
	base := filepath.Join(t.TempDir(), "x")
	_, err := Open(base)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
