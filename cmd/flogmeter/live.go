// cmd/flogmeter/live.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/flogmeter/internal/accum"
	"github.com/tamzrod/flogmeter/internal/config"
	"github.com/tamzrod/flogmeter/internal/httpserver"
	"github.com/tamzrod/flogmeter/internal/metrics"
	"github.com/tamzrod/flogmeter/internal/poller"
	"github.com/tamzrod/flogmeter/internal/report"
	"github.com/tamzrod/flogmeter/internal/scpi"
	"github.com/tamzrod/flogmeter/internal/session"
	"github.com/tamzrod/flogmeter/internal/writer"
)

func newLiveCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Log and integrate fast-log blocks from a connected instrument",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLive(cmd.Context(), cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to the YAML config")
	return cmd
}

func runLive(ctx context.Context, cfgPath string) error {
	cfg, err := loadLive(cfgPath)
	if err != nil {
		return err
	}

	id := session.NewID()
	log, err := newLogger(cfg, id)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	in := cfg.Instrument

	// --------------------
	// Rate + window
	// --------------------

	rate, err := cfg.SampleRate()
	if err != nil {
		return err
	}
	window, err := liveWindow(cfg.Accumulator, rate, log)
	if err != nil {
		return err
	}

	// --------------------
	// Instrument
	// --------------------

	inst, err := scpi.Dial(ctx, scpi.Config{
		Endpoint: in.Endpoint,
		Timeout:  time.Duration(in.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("instrument connect failed: %w", err)
	}
	defer inst.Close()
	log.Info("connected", zap.String("endpoint", in.Endpoint), zap.String("idn", inst.Identity()))

	if in.SyncTime {
		if err := inst.SyncDateTime(time.Now()); err != nil {
			return err
		}
	}

	// ---- zero offsets: committed before the first sample ----
	offsets := accum.NewOffsetTable()
	for ch, amps := range cfg.Accumulator.ZeroOffsets {
		if err := offsets.Set(ch, amps); err != nil {
			return err
		}
	}
	if in.CalibrateZeroS > 0 {
		cal, err := inst.CalibrateZero(ctx, in.Channel, time.Duration(in.CalibrateZeroS)*time.Second)
		if err != nil {
			return fmt.Errorf("zero calibration failed: %w", err)
		}
		log.Info("zero calibrated", zap.Int("channel", cal.Channel), zap.Float64("offset_a", cal.Offset), zap.Int("samples", cal.Samples))
		if err := offsets.Set(cal.Channel, cal.Offset); err != nil {
			return err
		}
	}

	if o := in.Output; o != nil {
		if err := inst.SetOutput(in.Channel, o.Voltage, o.Current); err != nil {
			return err
		}
		if err := inst.OutputEnable(in.Channel, o.Enable); err != nil {
			return err
		}
	}

	acc, err := accum.New(accum.Config{
		SampleRate:    rate,
		WindowSamples: window,
		Channel:       in.Channel,
		Offsets:       offsets,
	})
	if err != nil {
		return err
	}

	// --------------------
	// Outputs
	// --------------------

	csvPath := cfg.Output.CSV
	if csvPath == "" {
		csvPath = filepath.Join(cfg.Output.Dir, report.DefaultLiveName(time.Now()))
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	lw, err := report.NewLiveWriter(f)
	if err != nil {
		return err
	}
	log.Info("saving output", zap.String("csv", csvPath))

	var export writer.Writer
	if len(cfg.Export.Targets) > 0 {
		clients, closeClients, err := writer.BuildEndpointClients(cfg.Export)
		if err != nil {
			return fmt.Errorf("export clients failed: %w", err)
		}
		defer closeClients()
		export = writer.New(writer.BuildPlan(cfg.Export), clients)
	}

	tracker := session.NewTracker(id)

	var meter *metrics.Meter
	var metricsHandler http.Handler
	if cfg.Metrics.Enable {
		reg := metrics.NewRegistry()
		meter = metrics.NewMeter(reg)
		metricsHandler = metrics.Handler(reg)
	}

	if cfg.HTTP.Addr != "" {
		srv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, httpserver.Hooks{
			Ready:   tracker.Ready,
			Status:  func() any { return tracker.View() },
			Metrics: metricsHandler,
		})
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server failed", zap.Error(err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	// --------------------
	// Session
	// --------------------

	p, err := poller.Build(in, inst)
	if err != nil {
		return err
	}

	live := &session.Live{
		Instrument: inst,
		Producer:   p,
		Acc:        acc,
		Out:        lw,
		Tracker:    tracker,
		Log:        log,
		Export:     export,
		Meter:      meter,
		Channel:    in.Channel,
		RateToken:  in.SampleRate,
	}
	return live.Run(ctx)
}

// liveWindow resolves the validated window to a sample count.
func liveWindow(a config.AccumulatorConfig, rate float64, log *zap.Logger) (uint64, error) {
	if a.WindowSamples > 0 {
		return a.WindowSamples, nil
	}

	n, exact, err := accum.WindowFromSeconds(rate, a.WindowSeconds)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", config.ErrMissingConfiguration, err)
	}
	if !exact {
		log.Warn("window is not a whole number of samples, please check",
			zap.Float64("window_s", a.WindowSeconds), zap.Uint64("window_samples", n))
	}
	return n, nil
}
