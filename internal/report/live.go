// internal/report/live.go
package report

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/tamzrod/flogmeter/internal/accum"
)

// LiveHeader is the fixed column order of live logs.
const LiveHeader = "UnixTime,StringTime,Ah,Wh,VAvg,IAvg,WAvg,NSamplesBlock,NSamplesTotal,EffSampleRate"

const stringTimeLayout = "2006-01-02 15:04:05"

// DefaultLiveName is the log file name used when none is configured.
func DefaultLiveName(now time.Time) string {
	return "RS_NGM20x_Logger_" + now.Format("2006_01_02_15_04_05") + ".csv"
}

// LiveRow is one processed fast-log block.
type LiveRow struct {
	Elapsed time.Duration // since the logger started
	At      time.Time

	AhTotal *big.Int
	WhTotal *big.Int
	Block   accum.BlockStats
	Samples uint64 // session total

	EffSampleRate float64 // block samples / wall time since the previous block
}

// LiveWriter appends block rows and flushes after each one, so the file is
// usable while logging continues.
type LiveWriter struct {
	w *bufio.Writer
}

func NewLiveWriter(w io.Writer) (*LiveWriter, error) {
	lw := &LiveWriter{w: bufio.NewWriter(w)}
	if _, err := lw.w.WriteString(LiveHeader + "\n"); err != nil {
		return nil, fmt.Errorf("report: header: %w", err)
	}
	return lw, lw.w.Flush()
}

func (lw *LiveWriter) WriteRow(r LiveRow) error {
	_, err := fmt.Fprintf(lw.w, "%.5f,%s,%s,%s,%15.15f,%15.15f,%15.15f,%d,%d,%.3f\n",
		r.Elapsed.Seconds(),
		r.At.Format(stringTimeLayout),
		Femto(r.AhTotal),
		Femto(r.WhTotal),
		r.Block.VAvg, r.Block.IAvg, r.Block.WAvg,
		r.Block.Samples, r.Samples,
		r.EffSampleRate,
	)
	if err != nil {
		return fmt.Errorf("report: live row: %w", err)
	}
	return lw.w.Flush()
}
