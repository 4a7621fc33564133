// Package metrics exposes Prometheus collectors for the HTTP API and the
// generation pipeline on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/site-engine/internal/model"
)

const namespace = "site_engine"

// Metrics holds every collector the service reports.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
	Generations     *prometheus.CounterVec
	QualityScore    prometheus.Histogram
	SectionFallback *prometheus.CounterVec
	InvalidInputs   prometheus.Counter
}

// New creates a Metrics instance on a fresh registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		Generations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Completed generations by template and match kind.",
			},
			[]string{"template_id", "match"},
		),
		QualityScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "data_quality_score",
			Help:      "Distribution of data quality totals.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		SectionFallback: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "section_fallbacks_total",
				Help:      "Sections that fell back to their first variant.",
			},
			[]string{"section"},
		),
		InvalidInputs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_inputs_total",
			Help:      "Documents rejected by schema validation.",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveGeneration records a completed generation.
func (m *Metrics) ObserveGeneration(g *model.Generation) {
	m.Generations.WithLabelValues(g.Selection.TemplateID, g.Selection.Metadata.TemplateMatch).Inc()
	m.QualityScore.Observe(g.Quality.Total)
	for name, sec := range g.Selection.Sections {
		if sec.Fallback {
			m.SectionFallback.WithLabelValues(name).Inc()
		}
	}
}
