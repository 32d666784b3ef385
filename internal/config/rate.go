// internal/config/rate.go
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// baseRate is the fastest fast-log rate; slower rates halve it.
const baseRate = 500000.0

const rateSteps = 16

// ParseSampleRate maps a FLOG:SRAT token (S500K, S250K, S1K953, S15, ...)
// to the exact rate in Hz. Token digits are truncated nominal values, so the
// token is matched to the nearest 500 kHz / 2^n step.
func ParseSampleRate(token string) (float64, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if len(t) < 2 || t[0] != 'S' {
		return 0, fmt.Errorf("%w: sample rate %q", ErrMissingConfiguration, token)
	}
	body := t[1:]

	nominal, err := parseNominal(body)
	if err != nil || nominal <= 0 {
		return 0, fmt.Errorf("%w: sample rate %q", ErrMissingConfiguration, token)
	}

	for n := 0; n < rateSteps; n++ {
		r := baseRate / math.Exp2(float64(n))
		if math.Abs(r-nominal) <= r*0.05 {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported sample rate %q", ErrMissingConfiguration, token)
}

// parseNominal reads "250K" as 250000 and "1K953" as 1953.
func parseNominal(s string) (float64, error) {
	k := strings.IndexByte(s, 'K')
	if k < 0 {
		return strconv.ParseFloat(s, 64)
	}
	whole, frac := s[:k], s[k+1:]
	if frac == "" {
		frac = "0"
	}
	v, err := strconv.ParseFloat(whole+"."+frac, 64)
	if err != nil {
		return 0, err
	}
	return v * 1000, nil
}

// SampleRate returns the accumulation rate: the explicit override if set,
// otherwise the exact rate of the instrument token.
func (c *Config) SampleRate() (float64, error) {
	if c.Accumulator.SampleRateHz > 0 {
		return c.Accumulator.SampleRateHz, nil
	}
	if c.Instrument.SampleRate == "" {
		return 0, fmt.Errorf("%w: no sample rate", ErrMissingConfiguration)
	}
	return ParseSampleRate(c.Instrument.SampleRate)
}
