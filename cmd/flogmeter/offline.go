// cmd/flogmeter/offline.go
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/flogmeter/internal/config"
	"github.com/tamzrod/flogmeter/internal/rawfile"
	"github.com/tamzrod/flogmeter/internal/report"
	"github.com/tamzrod/flogmeter/internal/session"
)

func newOfflineCmd() *cobra.Command {
	var (
		cfgPath string
		channel int
	)

	cmd := &cobra.Command{
		Use:   "offline <base> <window_s> <offset_ua>",
		Short: "Process a recorded <base>.raw/<base>.meta pair into <base>_processed.csv",
		Long: `Reads <base>.raw (little-endian float32 voltage/current pairs) at the
rate given by the Samplerate line of <base>.meta, subtracts offset_ua
microamps from every current reading and writes one row per window_s
seconds of samples.

The window should be a whole number of samples.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("%w: window_s %q", config.ErrMissingConfiguration, args[1])
			}
			offset, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: offset_ua %q", config.ErrMissingConfiguration, args[2])
			}
			return runOffline(cmd.Context(), cfgPath, args[0], window, offset, channel)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "optional YAML config (logging section only)")
	cmd.Flags().IntVar(&channel, "channel", 1, "channel the offset applies to")
	return cmd
}

func runOffline(ctx context.Context, cfgPath, base string, windowS float64, offsetUA int64, channel int) error {
	cfg, err := loadAmbient(cfgPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, session.NewID())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	rec, err := rawfile.Open(base)
	if err != nil {
		return err
	}
	defer rec.Close()

	params := session.OfflineParams{
		SampleRate:      rec.Meta.SampleRate,
		WindowSeconds:   windowS,
		OffsetMicroAmps: offsetUA,
		Channel:         channel,
	}
	acc, err := params.Accumulator(log)
	if err != nil {
		return err
	}

	_, _, outPath := rawfile.Paths(base)
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	ow, err := report.NewOfflineWriter(f)
	if err != nil {
		return err
	}
	log.Info("processing", zap.String("raw", base+".raw"), zap.String("out", outPath), zap.Uint64("samples", rec.TotalSamples))

	o := &session.Offline{
		Source: rec,
		Acc:    acc,
		Out:    ow,
		Total:  rec.TotalSamples,
		Log:    log,
	}
	if _, err := o.Run(ctx); err != nil {
		return err
	}

	if n := rec.Leftover(); n > 0 {
		log.Warn("raw file ends in a partial sample", zap.Int("bytes", n))
	}
	return f.Close()
}
