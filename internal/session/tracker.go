// internal/session/tracker.go
package session

import (
	"math/big"
	"sync"

	"github.com/google/uuid"

	"github.com/tamzrod/flogmeter/internal/accum"
	"github.com/tamzrod/flogmeter/internal/report"
	"github.com/tamzrod/flogmeter/internal/status"
)

// NewID returns a fresh session identifier.
func NewID() string { return uuid.NewString() }

// Tracker is the session-owned status state: health, last error,
// seconds in error and the latest committed totals.
// Writes come from the session goroutine; reads may come from anywhere.
type Tracker struct {
	mu      sync.Mutex
	id      string
	snap    status.Snapshot
	lastErr string
}

func NewTracker(id string) *Tracker {
	return &Tracker{
		id: id,
		snap: status.Snapshot{
			Health:  status.HealthUnknown,
			AhTotal: new(big.Int),
			WhTotal: new(big.Int),
		},
	}
}

func (t *Tracker) ID() string { return t.id }

// Progress records committed totals. Any error state is cleared.
func (t *Tracker) Progress(st accum.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Health = status.HealthOK
	t.snap.LastErrorCode = status.CodeNone
	t.snap.SecondsInError = 0
	t.lastErr = ""
	t.setTotals(st)
}

// Stale marks the session as waiting on its source.
func (t *Tracker) Stale() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Health = status.HealthStale
}

// Fail records the error that ended the session.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Health = status.HealthError
	t.snap.LastErrorCode = status.CodeFor(err)
	if err != nil {
		t.lastErr = err.Error()
	}
}

// Stop records the final totals of a cleanly ended session.
func (t *Tracker) Stop(st accum.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Health = status.HealthStopped
	t.setTotals(st)
}

// Tick advances seconds_in_error once per second while the session
// is neither healthy nor stopped. It reports whether anything changed.
func (t *Tracker) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.snap.Health {
	case status.HealthOK, status.HealthStopped:
		return false
	}
	if t.snap.SecondsInError == 65535 {
		return false
	}
	t.snap.SecondsInError++
	return true
}

// Ready reports whether the session is accumulating.
func (t *Tracker) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.Health == status.HealthOK
}

// Snapshot returns a deep copy of the current status.
func (t *Tracker) Snapshot() status.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.snap
	s.AhTotal = new(big.Int).Set(t.snap.AhTotal)
	s.WhTotal = new(big.Int).Set(t.snap.WhTotal)
	return s
}

// View is the JSON form served on /status.
type View struct {
	Session        string `json:"session"`
	Health         string `json:"health"`
	LastErrorCode  uint16 `json:"last_error_code"`
	LastError      string `json:"last_error,omitempty"`
	SecondsInError uint16 `json:"seconds_in_error"`
	Samples        uint64 `json:"samples"`
	Ah             string `json:"ah"`
	Wh             string `json:"wh"`
}

func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	return View{
		Session:        t.id,
		Health:         healthName(t.snap.Health),
		LastErrorCode:  t.snap.LastErrorCode,
		LastError:      t.lastErr,
		SecondsInError: t.snap.SecondsInError,
		Samples:        t.snap.Samples,
		Ah:             report.SignedFemto(t.snap.AhTotal),
		Wh:             report.SignedFemto(t.snap.WhTotal),
	}
}

func (t *Tracker) setTotals(st accum.State) {
	t.snap.Samples = st.Samples
	if st.AhTotal != nil {
		t.snap.AhTotal.Set(st.AhTotal)
	}
	if st.WhTotal != nil {
		t.snap.WhTotal.Set(st.WhTotal)
	}
}

func healthName(h uint16) string {
	switch h {
	case status.HealthOK:
		return "ok"
	case status.HealthError:
		return "error"
	case status.HealthStale:
		return "stale"
	case status.HealthStopped:
		return "stopped"
	}
	return "unknown"
}
