// Package metrics owns the prometheus collectors. Every method is safe on a
// nil *Metrics so components can run without instrumentation in tests.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	registry *prometheus.Registry

	contentWrites   *prometheus.CounterVec
	seedFallbacks   *prometheus.CounterVec
	rebroadcasts    *prometheus.CounterVec
	viewerUpdates   *prometheus.CounterVec
	wsClients       prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpLatencySecs *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		contentWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_writes_total",
			Help:      "Full-list writes per content domain and editor operation.",
		}, []string{"domain", "operation", "result"}),
		seedFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_seed_fallbacks_total",
			Help:      "Loads that fell back to the built-in defaults.",
		}, []string{"domain", "reason"}),
		rebroadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_sync_rebroadcasts_total",
			Help:      "Sync trigger rebroadcast outcomes per domain.",
		}, []string{"domain", "result"}),
		viewerUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_viewer_updates_total",
			Help:      "Displayed-state replacements per domain and source.",
		}, []string{"domain", "source"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected websocket viewers.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		httpLatencySecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		m.contentWrites,
		m.seedFallbacks,
		m.rebroadcasts,
		m.viewerUpdates,
		m.wsClients,
		m.httpRequests,
		m.httpLatencySecs,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ContentWrite(domain, operation string, err error) {
	if m == nil {
		return
	}
	m.contentWrites.WithLabelValues(domain, operation, result(err)).Inc()
}

func (m *Metrics) SeedFallback(domain, reason string) {
	if m == nil {
		return
	}
	m.seedFallbacks.WithLabelValues(domain, reason).Inc()
}

func (m *Metrics) Rebroadcast(domain, outcome string) {
	if m == nil {
		return
	}
	m.rebroadcasts.WithLabelValues(domain, outcome).Inc()
}

func (m *Metrics) ViewerUpdate(domain, source string) {
	if m == nil {
		return
	}
	m.viewerUpdates.WithLabelValues(domain, source).Inc()
}

func (m *Metrics) SetWSClients(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}

func (m *Metrics) ObserveHTTP(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpLatencySecs.WithLabelValues(method).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
