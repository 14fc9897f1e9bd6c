// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metric names.
const (
	MetricImportRunsTotal     = "storefront_import_runs_total"
	MetricImportRowsTotal     = "storefront_import_rows_total"
	MetricHTTPRequestsTotal   = "storefront_http_requests_total"
	MetricHTTPDurationSeconds = "storefront_http_request_duration_seconds"
)

// Registry owns a private prometheus.Registry and the storefront collectors.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Registry struct {
	registry *prometheus.Registry

	importRuns   *prometheus.CounterVec
	importRows   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a Registry with Go runtime and process collectors attached.
func New() *Registry {
	// Use a dedicated registry so tests can build several without conflicts
	registry := prometheus.NewRegistry()

	r := &Registry{
		registry: registry,
		importRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricImportRunsTotal,
			Help: "Catalog import runs by result (ok, failed).",
		}, []string{"result"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricImportRowsTotal,
			Help: "Catalog rows processed by outcome (inserted, skipped, failed).",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPDurationSeconds,
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.importRuns,
		r.importRows,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Gatherer exposes the underlying registry, mostly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveImportRun counts one import run.
func (r *Registry) ObserveImportRun(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	r.importRuns.WithLabelValues(result).Inc()
}

// ObserveImportRow counts one processed catalog row.
func (r *Registry) ObserveImportRow(outcome string) {
	r.importRows.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
