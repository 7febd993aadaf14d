package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Query bus metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Layout metrics
	LayoutSessions prometheus.Gauge
	LayoutFrames   prometheus.Counter

	// AI metrics
	LLMRequests *prometheus.CounterVec
	LLMDuration prometheus.Histogram
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of dispatched queries",
		}, []string{"query", "status"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		LayoutSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_sessions_active",
			Help:      "Number of open layout sessions",
		}),
		LayoutFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_frames_total",
			Help:      "Total number of simulation frames sent to clients",
		}),
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM completion requests",
		}, []string{"status"}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Queries,
		c.QueryDuration,
		c.LayoutSessions,
		c.LayoutFrames,
		c.LLMRequests,
		c.LLMDuration,
	)
	return c
}

var _ Recorder = (*Collector)(nil)

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery records one query dispatch.
func (c *Collector) ObserveQuery(queryType string, duration time.Duration, err error) {
	c.Queries.WithLabelValues(queryType, outcome(err)).Inc()
	c.QueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
}

// ObserveLLM records one completion request.
func (c *Collector) ObserveLLM(duration time.Duration, err error) {
	c.LLMRequests.WithLabelValues(outcome(err)).Inc()
	c.LLMDuration.Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
