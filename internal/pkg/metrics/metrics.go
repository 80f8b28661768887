// Package metrics holds the Prometheus collectors of the dashboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet_dashboard"

// Connect outcomes.
const (
	OutcomeConnected        = "connected"
	OutcomeFailed           = "failed"
	OutcomeInProgress       = "in_progress"
	OutcomeAlreadyConnected = "already_connected"
	OutcomeCancelled        = "cancelled"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ConnectAttempts   *prometheus.CounterVec
	Disconnects       prometheus.Counter
	TeardownFailures  prometheus.Counter
	NetworkSelections *prometheus.CounterVec
	DashboardCache    *prometheus.CounterVec
	DashboardLoadSecs *prometheus.HistogramVec
	ActiveSessions    prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Wallet connect attempts by outcome.",
		}, []string{"connector", "outcome"}),
		Disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnects_total",
			Help:      "Disconnects that reset an active or pending connection.",
		}),
		TeardownFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_teardown_failures_total",
			Help:      "Connector teardown calls that returned an error.",
		}),
		NetworkSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_selections_total",
			Help:      "Successful network selections by network id.",
		}, []string{"network"}),
		DashboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_total",
			Help:      "Dashboard cache lookups by result.",
		}, []string{"result"}),
		DashboardLoadSecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_load_seconds",
			Help:      "Time spent loading dashboard data from the data source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held by the session store.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.ConnectAttempts,
			m.Disconnects,
			m.TeardownFailures,
			m.NetworkSelections,
			m.DashboardCache,
			m.DashboardLoadSecs,
			m.ActiveSessions,
		)
	}
	return m
}

// ObserveConnect counts one connect attempt.
func (m *Metrics) ObserveConnect(connectorID, outcome string) {
	if m == nil {
		return
	}
	m.ConnectAttempts.WithLabelValues(connectorID, outcome).Inc()
}

// ObserveDisconnect counts one effective disconnect.
func (m *Metrics) ObserveDisconnect(teardownErr error) {
	if m == nil {
		return
	}
	m.Disconnects.Inc()
	if teardownErr != nil {
		m.TeardownFailures.Inc()
	}
}

// ObserveSelection counts one network switch.
func (m *Metrics) ObserveSelection(networkID string) {
	if m == nil {
		return
	}
	m.NetworkSelections.WithLabelValues(networkID).Inc()
}

// ObserveCache counts a dashboard cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.DashboardCache.WithLabelValues(result).Inc()
}

// ObserveLoad records how long a data source load took.
func (m *Metrics) ObserveLoad(source string, seconds float64) {
	if m == nil {
		return
	}
	m.DashboardLoadSecs.WithLabelValues(source).Observe(seconds)
}

// SetActiveSessions publishes the session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
