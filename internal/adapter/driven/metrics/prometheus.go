// Package metrics records resolver, promotion and HTTP observations as
// Prometheus series on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

const namespace = "paygate"

var _ driven.MetricsRecorder = (*Recorder)(nil)

// Recorder implements driven.MetricsRecorder and exposes the HTTP series used
// by the request middleware.
type Recorder struct {
	registry *prometheus.Registry

	resolutions  *prometheus.CounterVec
	promotions   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a Recorder with all series registered on a fresh registry,
// alongside the Go runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "origin_resolutions_total",
			Help:      "Origin resolutions by provider and outcome flags.",
		}, []string{"provider", "using_legacy", "needs_promotion"}),
		promotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotions_total",
			Help:      "Credential promotions by provider, candidate source and outcome.",
		}, []string{"provider", "source", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		r.resolutions,
		r.promotions,
		r.httpRequests,
		r.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func (r *Recorder) ObserveResolution(provider string, usingLegacy, needsPromotion bool) {
	r.resolutions.WithLabelValues(provider, strconv.FormatBool(usingLegacy), strconv.FormatBool(needsPromotion)).Inc()
}

func (r *Recorder) ObservePromotion(provider, source, outcome string) {
	r.promotions.WithLabelValues(provider, source, outcome).Inc()
}

// ObserveHTTP records one served request. route is the matched ServeMux
// pattern, never the raw path.
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
