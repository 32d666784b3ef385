// internal/writer/types.go
package writer

import "github.com/tamzrod/flogmeter/internal/status"

// TargetPlan is one register block destination.
type TargetPlan struct {
	Transport  string // modbus | ingest
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// key identifies the shared connection for a target.
func (t TargetPlan) key() string { return t.Transport + "|" + t.Endpoint }

// Plan is the fully-built export plan for one meter.
type Plan struct {
	Targets []TargetPlan
}

// Writer delivers meter snapshots into every target.
type Writer interface {
	Write(s status.Snapshot) error
}
