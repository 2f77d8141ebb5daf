// Package metrics exposes Prometheus collectors for the executor, thread
// pool, and connection-handling layers, generalizing the teacher's
// hand-rolled Welford-stats /metrics JSON endpoint (internal/sched.stat)
// into real gauges/histograms. Grounded on
// go-server-3/internal/metrics.Registry and the prometheus/client_golang
// wiring also shown in other_examples/cuemby-warren.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps every collector the serving loop and its workers report
// through.
type Registry struct {
	ActiveConnections prometheus.Gauge
	TasksInFlight     prometheus.Gauge
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   prometheus.Histogram
	ThreadPoolJobs    prometheus.Counter
	ReadyQueueDepth   prometheus.Gauge
}

// NewRegistry builds and registers every collector against the default
// Prometheus registerer.
func NewRegistry() *Registry {
	return &Registry{
		ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "coophttp_connections_active",
			Help: "Number of TCP connections currently being served.",
		}),
		TasksInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "coophttp_executor_tasks_in_flight",
			Help: "Number of tasks currently held by the executor.",
		}),
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coophttp_requests_total",
			Help: "Total requests handled, labeled by response status class.",
		}, []string{"status_class"}),
		RequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coophttp_request_duration_seconds",
			Help:    "Time from request-line parse to response flush.",
			Buckets: prometheus.DefBuckets,
		}),
		ThreadPoolJobs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coophttp_threadpool_jobs_total",
			Help: "Total blocking jobs submitted to the worker pool.",
		}),
		ReadyQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "coophttp_ready_queue_depth",
			Help: "Number of task ids currently queued for the next ready pass.",
		}),
	}
}

// Handler returns an http.Handler exposing every registered collector.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveStatusClass increments RequestsTotal for the "NxX" class of the
// given status code (e.g. 404 -> "4xx").
func (r *Registry) ObserveStatusClass(code int) {
	class := "other"
	switch {
	case code >= 200 && code < 300:
		class = "2xx"
	case code >= 300 && code < 400:
		class = "3xx"
	case code >= 400 && code < 500:
		class = "4xx"
	case code >= 500:
		class = "5xx"
	}
	r.RequestsTotal.WithLabelValues(class).Inc()
}
