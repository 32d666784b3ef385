// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultTimeoutMs     = 1000
	DefaultIdleTimeoutMs = 5000
	DefaultPollHz        = 100
	DefaultExportTimeout = 2000
	DefaultMetricsPath   = "/metrics"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"

	deviceNameMaxChars = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	in := &cfg.Instrument
	if in.Channel == 0 {
		in.Channel = 1
	}
	if in.TimeoutMs == 0 {
		in.TimeoutMs = DefaultTimeoutMs
	}
	if in.IdleTimeoutMs == 0 {
		in.IdleTimeoutMs = DefaultIdleTimeoutMs
	}
	if in.PollHz == 0 {
		in.PollHz = DefaultPollHz
	}

	NormalizeAmbient(cfg)

	for i := range cfg.Export.Targets {
		t := &cfg.Export.Targets[i]

		if t.Transport == "" {
			t.Transport = "modbus"
		}
		if t.TimeoutMs == 0 {
			t.TimeoutMs = DefaultExportTimeout
		}

		// Normalize device_name:
		// - ASCII already validated
		// - Truncate to max 16 characters
		if len(t.DeviceName) > deviceNameMaxChars {
			t.DeviceName = t.DeviceName[:deviceNameMaxChars]
		}
	}
}

// NormalizeAmbient fills logging, metrics and output defaults only.
// Offline runs use it without an instrument section.
func NormalizeAmbient(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
}
