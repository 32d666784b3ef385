// cmd/flogmeter/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/flogmeter/internal/config"
	"github.com/tamzrod/flogmeter/internal/logging"
)

func main() {
	root := &cobra.Command{
		Use:   "flogmeter",
		Short: "Exact charge and energy metering from R&S NGM20x fast-log data",
		Long: `flogmeter integrates NGM20x fast-log samples into charge (Ah) and
energy (Wh) totals kept in femto-units, so long sessions do not drift.

Examples:
  flogmeter live --config flogmeter.yaml
  flogmeter offline flog-20200901T140613-ch1 0.001 30
  flogmeter calibrate --config flogmeter.yaml --seconds 10`,
		SilenceUsage: true,
	}

	root.AddCommand(newLiveCmd(), newOfflineCmd(), newCalibrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// --------------------
// Shared setup
// --------------------

// loadLive loads, validates and normalizes a config for instrument commands.
func loadLive(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: --config is required", config.ErrMissingConfiguration)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// loadAmbient loads an optional config for commands that only need logging.
func loadAmbient(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	config.NormalizeAmbient(cfg)
	return cfg, nil
}

func newLogger(cfg *config.Config, id string) (*zap.Logger, error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("session", id)), nil
}
