// Package metrics exposes Prometheus counters for token issuance, token
// verification and key set changes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "localidp"

// Results recorded on the verification and issuance counters
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds every collector of the server
type Metrics struct {
	TokensIssued  *prometheus.CounterVec
	Verifications *prometheus.CounterVec
	KeySetChanges *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	gatherer      prometheus.Gatherer
}

// NewRegistry creates a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// NewMetrics creates the collectors and registers them on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Token endpoint requests by grant type and result.",
		}, []string{"grant_type", "result"}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_verifications_total",
			Help:      "Bearer token verifications by result code.",
		}, []string{"result"}),
		KeySetChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_set_changes_total",
			Help:      "Key rotations and revocations by result.",
		}, []string{"operation", "result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: registry,
	}
}

// RecordIssue counts one token endpoint request
func (m *Metrics) RecordIssue(grantType string, err error) {
	m.TokensIssued.WithLabelValues(grantType, result(err)).Inc()
}

// RecordVerification counts one verification. code is empty on success.
func (m *Metrics) RecordVerification(code string) {
	if code == "" {
		code = ResultSuccess
	}
	m.Verifications.WithLabelValues(code).Inc()
}

// RecordKeySetChange counts one rotate or revoke
func (m *Metrics) RecordKeySetChange(operation string, err error) {
	m.KeySetChanges.WithLabelValues(operation, result(err)).Inc()
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
