// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/flogmeter/internal/status"
)

// endpointClient is the exact contract the writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

type writerImpl struct {
	targets []*meterWriter
}

// New builds a fan-out writer. Targets whose client is missing fail on every write.
func New(plan Plan, clients map[string]endpointClient) Writer {
	w := &writerImpl{}
	for _, t := range plan.Targets {
		w.targets = append(w.targets, newMeterWriter(t, clients[t.key()]))
	}
	return w
}

// Write delivers s to every target; one failing target does not block the others.
func (w *writerImpl) Write(s status.Snapshot) error {
	var errs []string

	for _, mw := range w.targets {
		if err := mw.WriteStatus(s); err != nil {
			errs = append(errs, fmt.Sprintf(
				"writer: ep=%s unit=%d slot=%d err=%v",
				mw.plan.Endpoint, mw.plan.UnitID, mw.plan.BaseSlot, err,
			))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}
