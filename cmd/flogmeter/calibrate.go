// cmd/flogmeter/calibrate.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/flogmeter/internal/scpi"
	"github.com/tamzrod/flogmeter/internal/session"
)

func newCalibrateCmd() *cobra.Command {
	var (
		cfgPath string
		seconds int
	)

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Measure the zero-load current offset of the configured channel",
		Long: `Drives the channel to 0 V with a 1 A limit, enables it and averages
MEAS:CURR? readings. Put the result under accumulator.zero_offsets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalibrate(cmd.Context(), cfgPath, seconds)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to the YAML config")
	cmd.Flags().IntVar(&seconds, "seconds", 10, "averaging period")
	return cmd
}

func runCalibrate(ctx context.Context, cfgPath string, seconds int) error {
	cfg, err := loadLive(cfgPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, session.NewID())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	in := cfg.Instrument
	inst, err := scpi.Dial(ctx, scpi.Config{
		Endpoint: in.Endpoint,
		Timeout:  time.Duration(in.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("instrument connect failed: %w", err)
	}
	defer inst.Close()

	log.Info("calculating zero", zap.Int("channel", in.Channel), zap.Int("seconds", seconds))
	cal, err := inst.CalibrateZero(ctx, in.Channel, time.Duration(seconds)*time.Second)
	if err != nil {
		return err
	}

	log.Info("zero level",
		zap.String("offset_a", fmt.Sprintf("%.9f", cal.Offset)),
		zap.Int("samples", cal.Samples),
	)
	fmt.Printf("accumulator:\n  zero_offsets:\n    %d: %.9f\n", cal.Channel, cal.Offset)
	return nil
}
