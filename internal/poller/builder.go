// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/flogmeter/internal/config"
)

// Build constructs a Poller for the configured channel over an
// already-connected instrument client. Config must be normalized.
func Build(in cfg.InstrumentConfig, client Client) (*Poller, error) {
	return New(
		Config{
			Channel:     in.Channel,
			PollHz:      float64(in.PollHz),
			IdleTimeout: time.Duration(in.IdleTimeoutMs) * time.Millisecond,
		},
		client,
	)
}
