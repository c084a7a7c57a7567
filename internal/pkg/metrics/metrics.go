package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridpath",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gridpath",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gridpath",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Tile metrics
	TilesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gridpath",
		Subsystem: "tiles",
		Name:      "fetched_total",
		Help:      "Total elevation tiles fetched and decoded from the tile service",
	})

	TileFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridpath",
		Subsystem: "tiles",
		Name:      "fetch_failures_total",
		Help:      "Total tile fetch failures by stage",
	}, []string{"stage"})

	TileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gridpath",
		Subsystem: "tiles",
		Name:      "cache_hits_total",
		Help:      "Total decoded-tile cache hits",
	})

	TileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gridpath",
		Subsystem: "tiles",
		Name:      "cache_misses_total",
		Help:      "Total decoded-tile cache misses",
	})

	TileCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gridpath",
		Subsystem: "tiles",
		Name:      "cache_evictions_total",
		Help:      "Total decoded tiles evicted from the in-process cache",
	})

	// Sampling metrics
	SamplingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridpath",
		Subsystem: "terrain",
		Name:      "sampling_duration_seconds",
		Help:      "Duration of a full route sampling walk",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	SampledPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridpath",
		Subsystem: "terrain",
		Name:      "sampled_points",
		Help:      "Number of points per sampled profile",
		Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridpath",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
