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
		Namespace: "chargemap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chargemap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chargemap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Charge-site metrics
	SitesObfuscated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chargemap",
		Subsystem: "sites",
		Name:      "obfuscations_total",
		Help:      "Obfuscation policy applications by outcome (perturbed, exact, kept)",
	}, []string{"mode"})

	ObfuscationDisplacement = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chargemap",
		Subsystem: "sites",
		Name:      "obfuscation_displacement_meters",
		Help:      "Ground distance between true and published coordinates",
		Buckets:   []float64{10, 50, 100, 250, 500, 750, 1000, 1500, 2000},
	})

	RegionQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chargemap",
		Subsystem: "region",
		Name:      "queries_total",
		Help:      "Region queries by outcome",
	}, []string{"outcome"})

	RegionSearchRadius = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chargemap",
		Subsystem: "region",
		Name:      "search_radius_degrees",
		Help:      "Planned search radius of region queries",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	RegionResultSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chargemap",
		Subsystem: "region",
		Name:      "result_size",
		Help:      "Number of sites returned by region queries",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	SiteEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chargemap",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Site change events published, by type and result",
	}, []string{"type", "result"})

	SitesReobfuscated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chargemap",
		Subsystem: "sites",
		Name:      "reobfuscated_total",
		Help:      "Sites re-obfuscated by the batch workflow",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chargemap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chargemap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chargemap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chargemap",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chargemap",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chargemap",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})

	DBPoolEmptyAcquires = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chargemap",
		Subsystem: "db",
		Name:      "pool_empty_acquires",
		Help:      "Cumulative acquires that had to wait for a new connection",
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
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics copies pool statistics into the db gauges.
// stat is a *pgxpool.Stat; the interface keeps pgx out of this package.
func UpdateDBPoolMetrics(stat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	EmptyAcquireCount() int64
}) {
	DBPoolConnsAcquired.Set(float64(stat.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(stat.IdleConns()))
	DBPoolConnsOpen.Set(float64(stat.TotalConns()))
	DBPoolEmptyAcquires.Set(float64(stat.EmptyAcquireCount()))
}
