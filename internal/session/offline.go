// internal/session/offline.go
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tamzrod/flogmeter/internal/accum"
	"github.com/tamzrod/flogmeter/internal/report"
	"github.com/tamzrod/flogmeter/internal/sample"
)

// ProgressEvery is the sample interval between offline progress lines.
const ProgressEvery = 65536

// SampleSource yields decoded samples in stream order; io.EOF ends it.
type SampleSource interface {
	Next() ([]sample.Sample, error)
}

// OfflineParams are the operator inputs of one offline run.
type OfflineParams struct {
	SampleRate      float64 // Hz, from the .meta file
	WindowSeconds   float64
	OffsetMicroAmps int64
	Channel         int
}

// Accumulator builds the run's accumulator and logs the derived parameters.
// A window that is not a whole number of samples is rounded up with a warning.
func (p OfflineParams) Accumulator(log *zap.Logger) (*accum.Accumulator, error) {
	ch := p.Channel
	if ch == 0 {
		ch = 1
	}

	window, exact, err := accum.WindowFromSeconds(p.SampleRate, p.WindowSeconds)
	if err != nil {
		return nil, err
	}
	if !exact {
		log.Warn("window is not a whole number of samples, please check",
			zap.Float64("window_s", p.WindowSeconds),
			zap.Float64("sample_rate", p.SampleRate),
			zap.Uint64("window_samples", window),
		)
	}

	offsets := accum.NewOffsetTable()
	if err := offsets.SetMicroAmps(ch, p.OffsetMicroAmps); err != nil {
		return nil, err
	}

	acc, err := accum.New(accum.Config{
		SampleRate:    p.SampleRate,
		WindowSamples: window,
		Channel:       ch,
		Offsets:       offsets,
	})
	if err != nil {
		return nil, err
	}

	log.Info("offline parameters",
		zap.Float64("sample_rate", p.SampleRate),
		zap.Int64("sample_scale", int64(acc.Scale())),
		zap.Int64("offset_ua", p.OffsetMicroAmps),
		zap.Uint64("window_samples", window),
	)
	return acc, nil
}

// Offline replays a recording through the accumulator, one CSV row per window.
type Offline struct {
	Source SampleSource
	Acc    *accum.Accumulator
	Out    *report.OfflineWriter
	Total  uint64 // expected samples for progress, 0 = unknown
	Log    *zap.Logger
}

// Run consumes the source to EOF. The pending partial window is always
// written as a final row, including when the run fails or is cancelled.
func (o *Offline) Run(ctx context.Context) (accum.State, error) {
	next := uint64(ProgressEvery)

	for {
		if err := ctx.Err(); err != nil {
			return o.finish(err)
		}

		samples, err := o.Source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return o.finish(err)
		}
		if len(samples) == 0 {
			continue
		}

		_, reps, err := o.Acc.AddBlock(samples)
		for _, rep := range reps {
			if werr := o.Out.WriteWindow(rep); werr != nil {
				return o.finish(werr)
			}
		}
		if err != nil {
			return o.finish(err)
		}

		if n := o.Acc.Snapshot().Samples; n >= next {
			o.progress(n)
			next = (n/ProgressEvery + 1) * ProgressEvery
		}
	}

	return o.finish(nil)
}

func (o *Offline) progress(n uint64) {
	fields := []zap.Field{zap.Uint64("samples", n)}
	if o.Total > 0 {
		fields = append(fields,
			zap.Uint64("total", o.Total),
			zap.String("percent", fmt.Sprintf("%4.3f", float64(n)*100/float64(o.Total))),
		)
	}
	o.Log.Info("progress", fields...)
}

func (o *Offline) finish(cause error) (accum.State, error) {
	if rep, err := o.Acc.Flush(); err == nil {
		if werr := o.Out.WriteWindow(rep); werr != nil && cause == nil {
			cause = werr
		}
	}
	if err := o.Out.Flush(); err != nil && cause == nil {
		cause = fmt.Errorf("session: flush output: %w", err)
	}

	st := o.Acc.Snapshot()
	log := o.Log.With(
		zap.Uint64("samples", st.Samples),
		zap.String("ah_total", report.SignedFemto(st.AhTotal)),
		zap.String("wh_total", report.SignedFemto(st.WhTotal)),
		zap.Int("rows", o.Out.Rows()),
	)
	if cause != nil {
		log.Error("offline run aborted", zap.Error(cause))
		return st, cause
	}
	log.Info("offline run complete")
	return st, nil
}
