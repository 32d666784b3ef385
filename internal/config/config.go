// internal/config/config.go
package config

type Config struct {
	Instrument  InstrumentConfig  `yaml:"instrument"`
	Accumulator AccumulatorConfig `yaml:"accumulator"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	HTTP        HTTPConfig        `yaml:"http"`
	Export      ExportConfig      `yaml:"export"`
}

// ---- INSTRUMENT (live source) ----

type InstrumentConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Channel       int    `yaml:"channel"`
	TimeoutMs     int    `yaml:"timeout_ms"`      // per socket read/write
	IdleTimeoutMs int    `yaml:"idle_timeout_ms"` // max wait for data-available
	PollHz        int    `yaml:"poll_hz"`         // status register poll rate
	SampleRate    string `yaml:"sample_rate"`     // FLOG:SRAT token, e.g. S250K

	SyncTime       bool          `yaml:"sync_time"`
	CalibrateZeroS int           `yaml:"calibrate_zero_s"` // 0 = skip
	Output         *OutputParams `yaml:"output"`           // nil = leave as is
}

type OutputParams struct {
	Enable  bool    `yaml:"enable"`
	Voltage float64 `yaml:"voltage"`
	Current float64 `yaml:"current"`
}

// ---- ACCUMULATOR ----

type AccumulatorConfig struct {
	// SampleRateHz overrides the rate derived from instrument.sample_rate.
	SampleRateHz  float64 `yaml:"sample_rate_hz"`
	WindowSamples uint64  `yaml:"window_samples"`
	WindowSeconds float64 `yaml:"window_seconds"`

	// ZeroOffsets maps channel -> amps.
	ZeroOffsets map[int]float64 `yaml:"zero_offsets"`
}

// ---- OUTPUT ----

type OutputConfig struct {
	Dir string `yaml:"dir"`
	CSV string `yaml:"csv"` // empty = timestamped name in Dir
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string         `yaml:"level"`
	Format string         `yaml:"format"` // json | console
	File   RotationConfig `yaml:"file"`
}

type RotationConfig struct {
	Filename   string `yaml:"filename"` // empty = stdout only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ---- METRICS / HTTP ----

type MetricsConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type HTTPConfig struct {
	Addr           string `yaml:"addr"` // empty = disabled
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
}

// ---- EXPORT (register mirror of totals + health) ----

type ExportConfig struct {
	Targets []ExportTarget `yaml:"targets"`
}

type ExportTarget struct {
	Transport  string `yaml:"transport"` // modbus | ingest
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	DeviceName string `yaml:"device_name"`
}
