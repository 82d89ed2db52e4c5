// Package metrics instruments rossby's HTTP surface with Prometheus
// counters/histograms, hosted on a separate gin app/port the way the
// teacher's cmd/query/main.go keeps /metrics scraping off the main
// request log.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors registered for the server.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	dataPoints      prometheus.Histogram
}

// NewMetrics builds a fresh registry with rossby's collectors
// registered.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rossby_http_requests_total",
			Help: "Total number of HTTP requests handled, by route and status code.",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rossby_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		dataPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rossby_data_points_returned",
			Help:    "Number of data points returned by a single /data response.",
			Buckets: prometheus.ExponentialBuckets(10, 10, 7),
		}),
	}

	registry.MustRegister(m.requestsTotal, m.requestDuration, m.dataPoints)
	return m
}

// ObserveDataPoints records the size of a hyperslab extraction result.
func (m *Metrics) ObserveDataPoints(n int) {
	if m == nil {
		return
	}
	m.dataPoints.Observe(float64(n))
}

// NewGinMiddleware returns a gin.HandlerFunc that records request count
// and latency per route. A nil *Metrics yields a no-op middleware so
// callers can wire it unconditionally when metrics are disabled.
func NewGinMiddleware(m *Metrics) gin.HandlerFunc {
	if m == nil {
		return func(ctx *gin.Context) { ctx.Next() }
	}
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(ctx.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// NewGinHandler exposes m's registry on a gin route for Prometheus to
// scrape.
func NewGinHandler(m *Metrics) gin.HandlerFunc {
	handler := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(handler)
}
