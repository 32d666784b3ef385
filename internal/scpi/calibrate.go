// internal/scpi/calibrate.go
package scpi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNoReading means the instrument answered MEAS:CURR? with nan.
var ErrNoReading = errors.New("scpi: no reading")

// MeasureCurrent queries one current reading in amps.
func (c *Client) MeasureCurrent() (float64, error) {
	s, err := c.Query("MEAS:CURR?")
	if err != nil {
		return 0, err
	}
	if strings.EqualFold(s, "nan") {
		return 0, ErrNoReading
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("scpi: MEAS:CURR?: bad reply %q", s)
	}
	return v, nil
}

// Calibration is the outcome of a zero run.
type Calibration struct {
	Channel int
	Offset  float64 // amps
	Samples int
}

// CalibrateZero drives channel ch to 0 V / 1 A, enables it and averages
// current readings for dur. nan readings are skipped. At least one valid
// reading is taken even when dur is zero.
func (c *Client) CalibrateZero(ctx context.Context, ch int, dur time.Duration) (Calibration, error) {
	if err := c.SetOutput(ch, 0.0, 1.0); err != nil {
		return Calibration{}, err
	}
	if err := c.OutputEnable(ch, true); err != nil {
		return Calibration{}, err
	}

	t0 := time.Now()
	sum := 0.0
	count := 0

	for {
		if err := ctx.Err(); err != nil {
			return Calibration{}, err
		}

		v, err := c.MeasureCurrent()
		if errors.Is(err, ErrNoReading) {
			continue
		}
		if err != nil {
			return Calibration{}, err
		}

		sum += v
		count++

		if time.Since(t0) > dur {
			break
		}
	}

	return Calibration{Channel: ch, Offset: sum / float64(count), Samples: count}, nil
}
