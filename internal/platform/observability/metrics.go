package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider lookup outcomes recorded by Metrics.ObserveProviderLookup.
const (
	LookupFound   = "found"
	LookupMissing = "missing"
	LookupError   = "error"
)

// Metrics groups the prometheus collectors used across the site.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	providerLookups  *prometheus.CounterVec
	contentFallbacks *prometheus.CounterVec
	pagesRendered    *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry together with the Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		providerLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vpn_provider_lookups_total",
			Help: "Provider lookups by outcome",
		}, []string{"outcome"}),
		contentFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "content_locale_fallbacks_total",
			Help: "Page renders that fell back to the default locale",
		}, []string{"topic"}),
		pagesRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pages_rendered_total",
			Help: "Comparison pages assembled, by resolved locale",
		}, []string{"topic", "locale"}),
	}
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (used by tests to gather values).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records a completed HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(seconds)
}

// ObserveProviderLookup counts a provider lookup outcome.
func (m *Metrics) ObserveProviderLookup(outcome string) {
	if m == nil {
		return
	}
	m.providerLookups.WithLabelValues(outcome).Inc()
}

// ObservePage counts an assembled page and whether the locale fell back.
func (m *Metrics) ObservePage(topic, resolvedLocale string, fallback bool) {
	if m == nil {
		return
	}
	m.pagesRendered.WithLabelValues(topic, resolvedLocale).Inc()
	if fallback {
		m.contentFallbacks.WithLabelValues(topic).Inc()
	}
}
