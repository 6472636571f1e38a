package server

import (
	"net/http"
	"time"

	"github.com/etnz/exchange"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ exchange.Observer = (*Metrics)(nil)

// Metrics holds the Prometheus collectors of one server. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Registry holds the server collectors.
	Registry *prometheus.Registry

	commands    *prometheus.CounterVec
	connections prometheus.Gauge
	lockWait    *prometheus.HistogramVec
	saves       prometheus.Counter
}

// NewMetrics creates and registers the server collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "xchg",
				Name:      "commands_total",
				Help:      "Total number of protocol commands handled.",
			},
			[]string{"verb", "result"},
		),
		connections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "xchg",
				Name:      "connections_active",
				Help:      "Current number of client connections.",
			},
		),
		lockWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "xchg",
				Name:      "lock_wait_seconds",
				Help:      "Time spent waiting for the store lock.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
			[]string{"mode"},
		),
		saves: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "xchg",
				Name:      "store_saves_total",
				Help:      "Total number of store snapshots written.",
			},
		),
	}
	m.Registry.MustRegister(
		m.commands,
		m.connections,
		m.lockWait,
		m.saves,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// LockAcquired implements exchange.Observer.
func (m *Metrics) LockAcquired(mode exchange.LockMode, waited time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.WithLabelValues(mode.String()).Observe(waited.Seconds())
}

// StoreSaved implements exchange.Observer.
func (m *Metrics) StoreSaved() {
	if m == nil {
		return
	}
	m.saves.Inc()
}

func (m *Metrics) command(verb, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(verb, result).Inc()
}

func (m *Metrics) connOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) connClosed() {
	if m != nil {
		m.connections.Dec()
	}
}
