// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to build a valid live config quickly
func live() *Config {
	return &Config{
		Instrument: InstrumentConfig{
			Endpoint:   "10.0.5.55:5025",
			Channel:    1,
			SampleRate: "S250K",
		},
		Accumulator: AccumulatorConfig{WindowSamples: 250},
	}
}

func target(endpoint string, unitID uint8, slot uint16) ExportTarget {
	return ExportTarget{Endpoint: endpoint, UnitID: unitID, BaseSlot: slot}
}

// ---- tests ----

func TestValidate_Minimal(t *testing.T) {
	require.NoError(t, Validate(live()))
}

func TestValidate_MissingEndpoint(t *testing.T) {
	cfg := live()
	cfg.Instrument.Endpoint = ""
	require.ErrorIs(t, Validate(cfg), ErrMissingConfiguration)
}

func TestValidate_MissingSampleRate(t *testing.T) {
	cfg := live()
	cfg.Instrument.SampleRate = ""
	require.ErrorIs(t, Validate(cfg), ErrMissingConfiguration)

	cfg.Instrument.SampleRate = "fast"
	require.ErrorIs(t, Validate(cfg), ErrMissingConfiguration)
}

func TestValidate_MissingWindow(t *testing.T) {
	cfg := live()
	cfg.Accumulator.WindowSamples = 0
	require.ErrorIs(t, Validate(cfg), ErrMissingConfiguration)

	cfg.Accumulator.WindowSeconds = 0.001
	require.NoError(t, Validate(cfg))
}

func TestValidate_WindowExclusive(t *testing.T) {
	cfg := live()
	cfg.Accumulator.WindowSeconds = 0.001
	require.ErrorIs(t, Validate(cfg), ErrMissingConfiguration)
}

func TestValidate_OffsetChannel(t *testing.T) {
	cfg := live()
	cfg.Accumulator.ZeroOffsets = map[int]float64{3: 0.001}
	require.ErrorIs(t, Validate(cfg), ErrMissingConfiguration)
}

func TestValidate_ExportSlotCollision(t *testing.T) {
	cfg := live()
	cfg.Export.Targets = []ExportTarget{
		target("ep1", 1, 0),
		target("ep1", 1, 1),
		target("ep2", 1, 0),
	}
	require.NoError(t, Validate(cfg))

	cfg.Export.Targets = append(cfg.Export.Targets, target("ep1", 1, 0))
	require.ErrorIs(t, Validate(cfg), ErrMissingConfiguration)
}

func TestValidate_ExportBaseSlotRange(t *testing.T) {
	cfg := live()
	cfg.Export.Targets = []ExportTarget{target("ep1", 1, MaxBaseSlot)}
	require.NoError(t, Validate(cfg))

	cfg.Export.Targets = []ExportTarget{target("ep1", 1, MaxBaseSlot+1)}
	require.ErrorIs(t, Validate(cfg), ErrMissingConfiguration)
}

func TestValidate_ExportDeviceNameASCII(t *testing.T) {
	cfg := live()
	tg := target("ep1", 1, 0)
	tg.DeviceName = "NGM202-µ"
	cfg.Export.Targets = []ExportTarget{tg}
	require.ErrorIs(t, Validate(cfg), ErrMissingConfiguration)
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := live()
	cfg.Instrument.Channel = 0
	tg := target("ep1", 1, 0)
	tg.DeviceName = "BENCH-SUPPLY-NGM202-CH1"
	cfg.Export.Targets = []ExportTarget{tg}

	require.NoError(t, Validate(cfg))
	Normalize(cfg)

	assert.Equal(t, 1, cfg.Instrument.Channel)
	assert.Equal(t, DefaultTimeoutMs, cfg.Instrument.TimeoutMs)
	assert.Equal(t, DefaultPollHz, cfg.Instrument.PollHz)
	assert.Equal(t, "modbus", cfg.Export.Targets[0].Transport)
	assert.Equal(t, "BENCH-SUPPLY-NGM", cfg.Export.Targets[0].DeviceName)
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
}

func TestParseSampleRate(t *testing.T) {
	cases := map[string]float64{
		"S500K":   500000,
		"S250K":   250000,
		"s125k":   125000,
		"S62K5":   62500,
		"S15K625": 15625,
		"S1K953":  1953.125,
		"S976":    976.5625,
		"S15":     15.2587890625,
	}
	for tok, want := range cases {
		got, err := ParseSampleRate(tok)
		require.NoError(t, err, tok)
		assert.Equal(t, want, got, tok)
	}

	for _, bad := range []string{"", "250K", "S", "S300K", "SxK"} {
		_, err := ParseSampleRate(bad)
		assert.ErrorIs(t, err, ErrMissingConfiguration, bad)
	}
}

func TestDecode(t *testing.T) {
	doc := `
instrument:
  endpoint: 10.0.5.55:5025
  sample_rate: S250K
  output:
    enable: true
    voltage: 3.3
    current: 0.1
accumulator:
  window_seconds: 0.001
  zero_offsets:
    1: 0.00003
export:
  targets:
    - endpoint: 127.0.0.1:502
      unit_id: 1
      device_name: NGM202
`
	cfg, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 3.3, cfg.Instrument.Output.Voltage)
	assert.Equal(t, 0.00003, cfg.Accumulator.ZeroOffsets[1])

	rate, err := cfg.SampleRate()
	require.NoError(t, err)
	assert.Equal(t, 250000.0, rate)

	_, err = Decode(strings.NewReader("instrument:\n  endpiont: x\n"))
	assert.Error(t, err)
}
