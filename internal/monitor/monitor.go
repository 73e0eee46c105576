package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	GamesCreated  prometheus.Counter
	TurnsRecorded *prometheus.CounterVec
	RoundsStarted prometheus.Counter
	ViewerCount   prometheus.Gauge
}

// Monitor owns a private registry so multiple instances (one per test
// server) never collide on registration.
type Monitor struct {
	registry *prometheus.Registry
	metrics  *Metrics
}

func New(namespace string) *Monitor {
	m := &Metrics{
		GamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Total number of games created",
		}),
		TurnsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_recorded_total",
			Help:      "Total number of turn actions recorded",
		}, []string{"action"}),
		RoundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "Total number of rounds started",
		}),
		ViewerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_viewers",
			Help:      "Number of connected websocket viewers",
		}),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		m.GamesCreated,
		m.TurnsRecorded,
		m.RoundsStarted,
		m.ViewerCount,
	)

	return &Monitor{registry: registry, metrics: m}
}

func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Monitor) IncGamesCreated() {
	m.metrics.GamesCreated.Inc()
}

func (m *Monitor) IncTurnsRecorded(action string) {
	m.metrics.TurnsRecorded.WithLabelValues(action).Inc()
}

func (m *Monitor) IncRoundsStarted() {
	m.metrics.RoundsStarted.Inc()
}

func (m *Monitor) IncViewers() {
	m.metrics.ViewerCount.Inc()
}

func (m *Monitor) DecViewers() {
	m.metrics.ViewerCount.Dec()
}
