// Package prommetrics provides a Prometheus implementation of
// wsserver.Metrics.
package prommetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gqlws/server-go/wsserver"
)

// Metrics exports connection and initialization counters.
type Metrics struct {
	activeConnections prometheus.Gauge
	connectionsOpened prometheus.Counter
	initSucceeded     prometheus.Counter
	initFailed        *prometheus.CounterVec
}

var _ wsserver.Metrics = (*Metrics)(nil)

// New registers the collectors with reg and returns the Metrics. Pass
// prometheus.DefaultRegisterer to use the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gqlws_active_connections",
			Help: "Currently open WebSocket connections.",
		}),
		connectionsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "gqlws_connections_opened_total",
			Help: "WebSocket connections accepted since start.",
		}),
		initSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "gqlws_connection_init_success_total",
			Help: "Successful connection initializations.",
		}),
		initFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gqlws_connection_init_failure_total",
			Help: "Failed connection initializations by internal error kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) ConnectionOpened() {
	m.connectionsOpened.Inc()
	m.activeConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	m.activeConnections.Dec()
}

func (m *Metrics) InitSucceeded() {
	m.initSucceeded.Inc()
}

func (m *Metrics) InitFailed(kind string) {
	m.initFailed.WithLabelValues(kind).Inc()
}
