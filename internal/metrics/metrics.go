// Package metrics provides Prometheus metrics for the workspace server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/valislegal/valis/internal/export"
)

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ExportsTotal    *prometheus.CounterVec
	ExportDuration  *prometheus.HistogramVec
	TasksTotal      *prometheus.CounterVec
	TaskDuration    prometheus.Histogram
	InboxImports    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valis_requests_total",
				Help: "Total number of API requests by operation and status.",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valis_request_duration_seconds",
				Help:    "API request duration by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valis_exports_total",
				Help: "Document exports by requested format and outcome.",
			},
			[]string{"format", "outcome"},
		),
		ExportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valis_export_duration_seconds",
				Help:    "Document export duration by requested format.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		TasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valis_agent_tasks_total",
				Help: "Finished agent tasks by status.",
			},
			[]string{"status"},
		),
		TaskDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "valis_agent_task_duration_seconds",
				Help:    "Agent task duration including the thinking delay.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		InboxImports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valis_inbox_imports_total",
				Help: "Files picked up from the inbox directory by result.",
			},
			[]string{"result"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.ExportsTotal)
	reg.MustRegister(m.ExportDuration)
	reg.MustRegister(m.TasksTotal)
	reg.MustRegister(m.TaskDuration)
	reg.MustRegister(m.InboxImports)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one API request.
func (m *Metrics) ObserveRequest(operation string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveExport implements export.Recorder.
func (m *Metrics) ObserveExport(format export.Format, outcome string, elapsed time.Duration) {
	m.ExportsTotal.WithLabelValues(string(format), outcome).Inc()
	m.ExportDuration.WithLabelValues(string(format)).Observe(elapsed.Seconds())
}

// ObserveTask implements dispatch.Recorder.
func (m *Metrics) ObserveTask(status string, elapsed time.Duration) {
	m.TasksTotal.WithLabelValues(status).Inc()
	m.TaskDuration.Observe(elapsed.Seconds())
}

// RecordImport counts an inbox file.
func (m *Metrics) RecordImport(result string) {
	m.InboxImports.WithLabelValues(result).Inc()
}
