// Package metrics holds the Prometheus collectors exported on /metrics.
// Every Record* method is safe on a nil *Metrics so tests and tools can run
// without a registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "opsdash"

// Metrics is the collector set of one server process.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ChoroplethToggles   *prometheus.CounterVec
	CacheOps            *prometheus.CounterVec
	DatasetRows         *prometheus.GaugeVec
	DashboardBuild      prometheus.Histogram
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ChoroplethToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "choropleth_toggles_total",
			Help:      "Choropleth selection requests by requested view and outcome.",
		}, []string{"view", "result"}),
		CacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_cache_ops_total",
			Help:      "Redis view cache operations by kind and outcome.",
		}, []string{"op", "result"}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows per table after cleaning.",
		}, []string{"table"}),
		DashboardBuild: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_build_seconds",
			Help:      "Time to compute all dashboard views.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ChoroplethToggles,
		m.CacheOps,
		m.DatasetRows,
		m.DashboardBuild,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (used by tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordToggle(view, result string) {
	if m == nil {
		return
	}
	m.ChoroplethToggles.WithLabelValues(view, result).Inc()
}

func (m *Metrics) RecordCacheOp(op, result string) {
	if m == nil {
		return
	}
	m.CacheOps.WithLabelValues(op, result).Inc()
}

func (m *Metrics) SetDatasetRows(counts map[string]int) {
	if m == nil {
		return
	}
	for table, n := range counts {
		m.DatasetRows.WithLabelValues(table).Set(float64(n))
	}
}

func (m *Metrics) ObserveBuild(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DashboardBuild.Observe(elapsed.Seconds())
}
