// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrMissingConfiguration is fatal at startup, before any accumulation.
var ErrMissingConfiguration = errors.New("config: missing or invalid configuration")

// MaxBaseSlot keeps a 32-register meter block inside the 16-bit address space.
const MaxBaseSlot = 0x10000/32 - 1

// Validate checks a live-acquisition configuration.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrMissingConfiguration)
	}

	// ------------------------------------------------------------
	// INSTRUMENT
	// ------------------------------------------------------------

	in := cfg.Instrument
	if in.Endpoint == "" {
		return fmt.Errorf("%w: instrument.endpoint is required", ErrMissingConfiguration)
	}
	if in.Channel < 0 || in.Channel > 2 {
		return fmt.Errorf("%w: instrument.channel %d out of range 1..2", ErrMissingConfiguration, in.Channel)
	}
	if in.TimeoutMs < 0 || in.IdleTimeoutMs < 0 || in.PollHz < 0 || in.CalibrateZeroS < 0 {
		return fmt.Errorf("%w: instrument timings must not be negative", ErrMissingConfiguration)
	}
	if in.SampleRate == "" {
		return fmt.Errorf("%w: instrument.sample_rate is required", ErrMissingConfiguration)
	}
	if _, err := ParseSampleRate(in.SampleRate); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// ACCUMULATOR
	// ------------------------------------------------------------

	if err := ValidateAccumulator(cfg.Accumulator); err != nil {
		return err
	}
	if cfg.Accumulator.WindowSamples == 0 && cfg.Accumulator.WindowSeconds == 0 {
		return fmt.Errorf("%w: accumulator.window_samples or accumulator.window_seconds is required", ErrMissingConfiguration)
	}

	// ------------------------------------------------------------
	// EXPORT TARGETS
	// ------------------------------------------------------------

	return validateExport(cfg.Export)
}

// ValidateAccumulator checks the settings shared by live and offline runs.
func ValidateAccumulator(a AccumulatorConfig) error {
	if a.SampleRateHz < 0 || math.IsNaN(a.SampleRateHz) || math.IsInf(a.SampleRateHz, 0) {
		return fmt.Errorf("%w: accumulator.sample_rate_hz %v", ErrMissingConfiguration, a.SampleRateHz)
	}
	if a.WindowSamples > 0 && a.WindowSeconds > 0 {
		return fmt.Errorf("%w: window_samples and window_seconds are exclusive", ErrMissingConfiguration)
	}
	if a.WindowSeconds < 0 || math.IsNaN(a.WindowSeconds) {
		return fmt.Errorf("%w: accumulator.window_seconds %v", ErrMissingConfiguration, a.WindowSeconds)
	}
	for ch, amps := range a.ZeroOffsets {
		if ch < 1 || ch > 2 {
			return fmt.Errorf("%w: zero offset for unknown channel %d", ErrMissingConfiguration, ch)
		}
		if math.IsNaN(amps) || math.IsInf(amps, 0) {
			return fmt.Errorf("%w: zero offset for channel %d is not finite", ErrMissingConfiguration, ch)
		}
	}
	return nil
}

func validateExport(e ExportConfig) error {
	// key = endpoint | unit_id | base_slot
	owner := make(map[string]int)

	for i, t := range e.Targets {
		switch t.Transport {
		case "", "modbus", "ingest":
		default:
			return fmt.Errorf("%w: export target %d: unknown transport %q", ErrMissingConfiguration, i, t.Transport)
		}
		if t.Endpoint == "" {
			return fmt.Errorf("%w: export target %d: endpoint required", ErrMissingConfiguration, i)
		}
		if t.BaseSlot > MaxBaseSlot {
			return fmt.Errorf("%w: export target %d: base_slot %d above %d", ErrMissingConfiguration, i, t.BaseSlot, MaxBaseSlot)
		}

		// device_name sanity (ASCII only)
		for j := 0; j < len(t.DeviceName); j++ {
			if t.DeviceName[j] > 0x7F {
				return fmt.Errorf(
					"%w: export target %d: device_name must contain ASCII characters only",
					ErrMissingConfiguration,
					i,
				)
			}
		}

		key := fmt.Sprintf("%s|%d|%d", t.Endpoint, t.UnitID, t.BaseSlot)
		if prev, exists := owner[key]; exists {
			return fmt.Errorf(
				"%w: base_slot collision: endpoint=%s unit_id=%d slot=%d used by targets %d and %d",
				ErrMissingConfiguration,
				t.Endpoint,
				t.UnitID,
				t.BaseSlot,
				prev,
				i,
			)
		}
		owner[key] = i
	}
	return nil
}
