// internal/metrics/metrics.go
package metrics

import (
	"math/big"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry creates a private registry with the runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Meter holds the acquisition metrics of one session.
type Meter struct {
	Frames        *prometheus.CounterVec // labels: result=ok|error
	Bytes         prometheus.Counter
	Samples       prometheus.Counter
	Windows       prometheus.Counter
	Errors        *prometheus.CounterVec // labels: kind
	AhTotal       prometheus.Gauge
	WhTotal       prometheus.Gauge
	EffSampleRate prometheus.Gauge
}

// NewMeter registers and returns the meter metrics.
func NewMeter(reg prometheus.Registerer) *Meter {
	m := &Meter{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flogmeter_frames_total",
			Help: "Fast-log block responses by result.",
		}, []string{"result"}),
		Bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flogmeter_payload_bytes_total",
			Help: "Block payload bytes received.",
		}),
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flogmeter_samples_total",
			Help: "Samples integrated into the totals.",
		}),
		Windows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flogmeter_windows_total",
			Help: "Windowed reports emitted.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flogmeter_errors_total",
			Help: "Session errors by kind.",
		}, []string{"kind"}),
		AhTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flogmeter_charge_ah",
			Help: "Accumulated charge in Ah (display precision only).",
		}),
		WhTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flogmeter_energy_wh",
			Help: "Accumulated energy in Wh (display precision only).",
		}),
		EffSampleRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flogmeter_effective_sample_rate_hz",
			Help: "Samples per wall-clock second over the last block.",
		}),
	}
	reg.MustRegister(m.Frames, m.Bytes, m.Samples, m.Windows, m.Errors, m.AhTotal, m.WhTotal, m.EffSampleRate)
	return m
}

var femto = new(big.Float).SetFloat64(1e15)

// SetTotals publishes femto-unit totals as float gauges.
func (m *Meter) SetTotals(ah, wh *big.Int) {
	m.AhTotal.Set(toUnits(ah))
	m.WhTotal.Set(toUnits(wh))
}

func toUnits(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), femto).Float64()
	return f
}
