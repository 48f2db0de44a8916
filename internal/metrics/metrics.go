// Package metrics exposes Prometheus collectors for LLM dispatches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "translation_judge"

// Recorder owns a private registry so tests can create as many as they like.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Recorder with process and Go runtime collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "LLM dispatches by action, mode and outcome.",
		}, []string{"action", "mode", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent obtaining an LLM response.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action", "mode"}),
	}
	r.registry.MustRegister(
		r.calls,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records one finished dispatch.
func (r *Recorder) Observe(action, mode, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.calls.WithLabelValues(action, mode, outcome).Inc()
	r.duration.WithLabelValues(action, mode).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
