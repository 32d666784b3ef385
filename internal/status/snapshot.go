// internal/status/snapshot.go
package status

import "math/big"

// Snapshot represents exactly what the exporter is allowed to deliver.
// Totals are femto-units; nil totals encode as zero.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16

	Samples uint64
	AhTotal *big.Int
	WhTotal *big.Int
}
