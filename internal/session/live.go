// internal/session/live.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/flogmeter/internal/accum"
	"github.com/tamzrod/flogmeter/internal/metrics"
	"github.com/tamzrod/flogmeter/internal/poller"
	"github.com/tamzrod/flogmeter/internal/report"
	"github.com/tamzrod/flogmeter/internal/sample"
	"github.com/tamzrod/flogmeter/internal/writer"
)

// Instrument is the logger control the live session needs.
type Instrument interface {
	StartLogger(ch int, rateToken string) error
	StopLogger() error
}

// Producer emits blocks until its first failure, then closes out.
type Producer interface {
	Run(ctx context.Context, out chan<- poller.PollResult)
}

// Live owns one acquisition session: it starts the logger, integrates every
// block in arrival order and mirrors the totals to the CSV log, the register
// export and the metrics.
type Live struct {
	Instrument Instrument
	Producer   Producer
	Acc        *accum.Accumulator
	Out        *report.LiveWriter
	Tracker    *Tracker
	Log        *zap.Logger

	Export writer.Writer  // nil = no register export
	Meter  *metrics.Meter // nil = no metrics

	Channel   int
	RateToken string

	origin time.Time
	tlast  time.Time
}

// Run blocks until ctx is cancelled or the stream fails. Cancellation is a
// clean stop and returns nil. Either way the partial window is flushed and
// the logger is stopped.
func (l *Live) Run(ctx context.Context) error {
	l.Tracker.Stale()
	l.export()

	if err := l.Instrument.StartLogger(l.Channel, l.RateToken); err != nil {
		err = fmt.Errorf("session: start logger: %w", err)
		l.Tracker.Fail(err)
		l.export()
		return err
	}
	defer func() {
		if err := l.Instrument.StopLogger(); err != nil {
			l.Log.Warn("stop logger failed", zap.Error(err))
		}
	}()

	l.origin = time.Now()
	l.tlast = l.origin
	l.Log.Info("logger started", zap.Int("channel", l.Channel), zap.String("rate", l.RateToken))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan poller.PollResult)
	go l.Producer.Run(runCtx, out)

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return l.finish(nil)

		case res, ok := <-out:
			if !ok {
				return l.finish(nil)
			}
			if res.Err != nil {
				l.count(res.Err)
				return l.finish(res.Err)
			}
			if err := l.block(res); err != nil {
				l.count(err)
				return l.finish(err)
			}

		case <-secTicker.C:
			if l.Tracker.Tick() {
				l.export()
			}
		}
	}
}

// block integrates one frame. An empty block is skipped, not fatal.
func (l *Live) block(res poller.PollResult) error {
	payload := res.Frame.Payload
	whole := sample.Whole(payload)
	if stray := len(payload) - len(whole); stray > 0 {
		l.Log.Debug("discarding partial sample", zap.Int("bytes", stray))
	}

	if l.Meter != nil {
		l.Meter.Frames.WithLabelValues("ok").Inc()
		l.Meter.Bytes.Add(float64(len(payload)))
	}

	stats, reps, err := l.Acc.AddBlock(sample.DecodeAll(whole))
	if errors.Is(err, accum.ErrEmptyBlock) {
		l.Log.Warn("empty block skipped", zap.Int("declared", res.Frame.Declared))
		return nil
	}

	// samples before a failing one are committed either way
	st := l.Acc.Snapshot()
	l.Tracker.Progress(st)
	if err != nil {
		return err
	}

	for _, rep := range reps {
		l.Log.Debug("window closed",
			zap.Uint64("samples", rep.Samples),
			zap.String("ah_window", report.SignedFemto(rep.AhWindow)),
			zap.String("wh_window", report.SignedFemto(rep.WhWindow)),
		)
	}

	eff := 0.0
	if dt := res.At.Sub(l.tlast).Seconds(); dt > 0 {
		eff = float64(stats.Samples) / dt
	}
	l.tlast = res.At

	if err := l.Out.WriteRow(report.LiveRow{
		Elapsed:       res.At.Sub(l.origin),
		At:            res.At,
		AhTotal:       st.AhTotal,
		WhTotal:       st.WhTotal,
		Block:         stats,
		Samples:       st.Samples,
		EffSampleRate: eff,
	}); err != nil {
		return err
	}

	if l.Meter != nil {
		l.Meter.Samples.Add(float64(stats.Samples))
		l.Meter.Windows.Add(float64(len(reps)))
		l.Meter.EffSampleRate.Set(eff)
		l.Meter.SetTotals(st.AhTotal, st.WhTotal)
	}

	l.export()
	return nil
}

// finish flushes the partial window and publishes the final state.
func (l *Live) finish(cause error) error {
	if rep, err := l.Acc.Flush(); err == nil {
		l.Log.Info("partial window flushed",
			zap.Uint64("sub_samples", rep.Sub),
			zap.String("ah_window", report.SignedFemto(rep.AhWindow)),
			zap.String("wh_window", report.SignedFemto(rep.WhWindow)),
		)
	}

	st := l.Acc.Snapshot()
	log := l.Log.With(
		zap.Uint64("samples", st.Samples),
		zap.String("ah_total", report.SignedFemto(st.AhTotal)),
		zap.String("wh_total", report.SignedFemto(st.WhTotal)),
	)

	if cause != nil {
		l.Tracker.Fail(cause)
		l.export()
		log.Error("session aborted", zap.Error(cause))
		return cause
	}

	l.Tracker.Stop(st)
	l.export()
	log.Info("session stopped")
	return nil
}

func (l *Live) export() {
	if l.Export == nil {
		return
	}
	if err := l.Export.Write(l.Tracker.Snapshot()); err != nil {
		l.Log.Warn("export write failed", zap.Error(err))
	}
}

func (l *Live) count(err error) {
	if l.Meter == nil {
		return
	}
	l.Meter.Frames.WithLabelValues("error").Inc()
	l.Meter.Errors.WithLabelValues(errorKind(err)).Inc()
}
