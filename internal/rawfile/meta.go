// internal/rawfile/meta.go
package rawfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tamzrod/flogmeter/internal/config"
)

// sampleRateKey is the .meta key holding the rate in Hz.
const sampleRateKey = "Samplerate"

// Meta is the parsed description file of one recording.
type Meta struct {
	SampleRate float64
	Fields     map[string]string // first tab field -> second, trimmed
}

// ReadMeta parses tab-separated key/value lines.
// A missing or unparseable Samplerate is a configuration error.
func ReadMeta(r io.Reader) (Meta, error) {
	m := Meta{Fields: make(map[string]string)}
	found := false

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		key := strings.TrimSpace(parts[0])
		val := ""
		if len(parts) > 1 {
			val = strings.TrimSpace(parts[1])
		}
		m.Fields[key] = val

		if key != sampleRateKey {
			continue
		}
		rate, err := strconv.ParseFloat(val, 64)
		if err != nil || rate <= 0 {
			return Meta{}, fmt.Errorf("%w: %s %q", config.ErrMissingConfiguration, sampleRateKey, val)
		}
		m.SampleRate = rate
		found = true
	}
	if err := sc.Err(); err != nil {
		return Meta{}, fmt.Errorf("rawfile: meta: %w", err)
	}

	if !found {
		return Meta{}, fmt.Errorf("%w: no %s line in .meta", config.ErrMissingConfiguration, sampleRateKey)
	}
	return m, nil
}
