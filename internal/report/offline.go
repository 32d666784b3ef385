// internal/report/offline.go
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tamzrod/flogmeter/internal/accum"
)

// OfflineHeader is the fixed column order of processed recordings.
const OfflineHeader = "Nsamp,Nsubsamp,Ah_total,Wh_total,Ah_window,Wh_window,I,V,W"

// OfflineWriter emits one row per closed (or flushed) window.
type OfflineWriter struct {
	w    *bufio.Writer
	rows int
}

// NewOfflineWriter writes the header immediately.
func NewOfflineWriter(w io.Writer) (*OfflineWriter, error) {
	ow := &OfflineWriter{w: bufio.NewWriter(w)}
	if _, err := ow.w.WriteString(OfflineHeader + "\n"); err != nil {
		return nil, fmt.Errorf("report: header: %w", err)
	}
	return ow, nil
}

// WriteWindow appends one window row. I, V and W are from the window's last sample.
func (ow *OfflineWriter) WriteWindow(rep accum.WindowReport) error {
	_, err := fmt.Fprintf(ow.w, "%d,%d,%s,%s,%s,%s,%f,%f,%f\n",
		rep.Samples, rep.Sub,
		SignedFemto(rep.AhTotal),
		SignedFemto(rep.WhTotal),
		SignedFemto(rep.AhWindow),
		SignedFemto(rep.WhWindow),
		rep.Last.Current, rep.Last.Voltage, rep.Last.Power,
	)
	if err != nil {
		return fmt.Errorf("report: row %d: %w", ow.rows+1, err)
	}
	ow.rows++
	return nil
}

// Rows returns the number of window rows written.
func (ow *OfflineWriter) Rows() int { return ow.rows }

// Flush pushes buffered rows to the underlying writer.
func (ow *OfflineWriter) Flush() error { return ow.w.Flush() }
