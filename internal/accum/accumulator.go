// internal/accum/accumulator.go
package accum

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/tamzrod/flogmeter/internal/sample"
)

// ErrEmptyBlock means a report was requested over zero new samples.
var ErrEmptyBlock = errors.New("accum: empty block")

// Config is the trusted per-session input.
type Config struct {
	SampleRate    float64      // Hz, as configured on the instrument
	WindowSamples uint64       // 0 disables windowed reports
	Channel       int          // offset lookup key
	Offsets       *OffsetTable // committed by New; nil means no correction
}

// State is the running session total in femto-units.
type State struct {
	AhTotal *big.Int
	WhTotal *big.Int
	Samples uint64
}

// Window is the baseline taken at the last window boundary.
type Window struct {
	AhStart *big.Int
	WhStart *big.Int
	Sub     uint64
	Size    uint64
}

// Reading is one corrected sample as it entered the totals.
type Reading struct {
	Voltage float64
	Current float64
	Power   float64
}

// WindowReport is emitted when a window closes or a partial window is flushed.
type WindowReport struct {
	Samples  uint64 // session sample count
	Sub      uint64 // samples in this window
	AhTotal  *big.Int
	WhTotal  *big.Int
	AhWindow *big.Int
	WhWindow *big.Int
	Last     Reading
	Final    bool // produced by Flush
}

// BlockStats are diagnostic float means over one processed block.
type BlockStats struct {
	Samples int
	VAvg    float64
	IAvg    float64
	WAvg    float64
}

// Accumulator integrates samples into exact charge and energy.
// It is a sequential reducer owned by one goroutine.
type Accumulator struct {
	scale  float64
	offset float64

	state State
	win   Window
	last  Reading

	inc big.Int
}

// New builds an accumulator and commits the offset table.
func New(cfg Config) (*Accumulator, error) {
	scale, err := ScaleFactor(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	var offset float64
	if cfg.Offsets != nil {
		cfg.Offsets.Commit()
		offset = cfg.Offsets.Offset(cfg.Channel)
	}

	a := &Accumulator{scale: scale, offset: offset}
	a.win.Size = cfg.WindowSamples
	a.Reset()
	return a, nil
}

// Scale returns the femto-units per amp per sample in use.
func (a *Accumulator) Scale() float64 { return a.scale }

// Offset returns the committed zero offset (A).
func (a *Accumulator) Offset() float64 { return a.offset }

// Reset zeroes totals and the window baseline. Operator action only.
func (a *Accumulator) Reset() {
	a.state = State{AhTotal: new(big.Int), WhTotal: new(big.Int)}
	a.win.AhStart = new(big.Int)
	a.win.WhStart = new(big.Int)
	a.win.Sub = 0
	a.last = Reading{}
}

// Add integrates one sample. ok is true when the sample closed a window.
// On error nothing is committed.
func (a *Accumulator) Add(s sample.Sample) (rep WindowReport, ok bool, err error) {
	i := s.Current - a.offset
	w := s.Voltage * i

	ah, err := Increment(i, a.scale)
	if err != nil {
		return WindowReport{}, false, fmt.Errorf("current: %w", err)
	}
	wh, err := Increment(w, a.scale)
	if err != nil {
		return WindowReport{}, false, fmt.Errorf("power: %w", err)
	}

	a.state.AhTotal.Add(a.state.AhTotal, a.inc.SetInt64(ah))
	a.state.WhTotal.Add(a.state.WhTotal, a.inc.SetInt64(wh))
	a.state.Samples++
	a.win.Sub++
	a.last = Reading{Voltage: s.Voltage, Current: i, Power: w}

	if a.win.Size > 0 && a.win.Sub == a.win.Size {
		return a.closeWindow(false), true, nil
	}
	return WindowReport{}, false, nil
}

// AddBlock integrates samples in order and returns the block means plus every
// window closed inside the block. Samples added before an error stay committed.
func (a *Accumulator) AddBlock(samples []sample.Sample) (BlockStats, []WindowReport, error) {
	if len(samples) == 0 {
		return BlockStats{}, nil, ErrEmptyBlock
	}

	var (
		reps             []WindowReport
		vSum, iSum, wSum float64
	)

	for n, s := range samples {
		rep, ok, err := a.Add(s)
		if err != nil {
			return BlockStats{}, reps, fmt.Errorf("accum: sample %d of block: %w", n, err)
		}
		if ok {
			reps = append(reps, rep)
		}
		vSum += a.last.Voltage
		iSum += a.last.Current
		wSum += a.last.Power
	}

	n := float64(len(samples))
	return BlockStats{
		Samples: len(samples),
		VAvg:    vSum / n,
		IAvg:    iSum / n,
		WAvg:    wSum / n,
	}, reps, nil
}

// Flush emits the pending partial window, if any.
func (a *Accumulator) Flush() (WindowReport, error) {
	if a.win.Sub == 0 {
		return WindowReport{}, ErrEmptyBlock
	}
	return a.closeWindow(true), nil
}

// Pending returns the number of samples since the last window boundary.
func (a *Accumulator) Pending() uint64 { return a.win.Sub }

// Snapshot returns a deep copy of the running totals.
func (a *Accumulator) Snapshot() State {
	return State{
		AhTotal: new(big.Int).Set(a.state.AhTotal),
		WhTotal: new(big.Int).Set(a.state.WhTotal),
		Samples: a.state.Samples,
	}
}

// WindowState returns a deep copy of the window baseline.
func (a *Accumulator) WindowState() Window {
	return Window{
		AhStart: new(big.Int).Set(a.win.AhStart),
		WhStart: new(big.Int).Set(a.win.WhStart),
		Sub:     a.win.Sub,
		Size:    a.win.Size,
	}
}

func (a *Accumulator) closeWindow(final bool) WindowReport {
	rep := WindowReport{
		Samples:  a.state.Samples,
		Sub:      a.win.Sub,
		AhTotal:  new(big.Int).Set(a.state.AhTotal),
		WhTotal:  new(big.Int).Set(a.state.WhTotal),
		AhWindow: new(big.Int).Sub(a.state.AhTotal, a.win.AhStart),
		WhWindow: new(big.Int).Sub(a.state.WhTotal, a.win.WhStart),
		Last:     a.last,
		Final:    final,
	}

	a.win.AhStart.Set(a.state.AhTotal)
	a.win.WhStart.Set(a.state.WhTotal)
	a.win.Sub = 0

	return rep
}
