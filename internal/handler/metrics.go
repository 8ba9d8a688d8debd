package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the fact-check service.
var Metrics = struct {
	JobsProcessed     *prometheus.CounterVec
	JobsSkipped       *prometheus.CounterVec
	AICalls           *prometheus.CounterVec
	AIBudgetSkips     prometheus.Counter
	AIBudgetRemaining prometheus.GaugeFunc
	QueueDepth        prometheus.GaugeFunc
	TickDuration      *prometheus.HistogramVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
	DBPoolActive      prometheus.GaugeFunc
	DBPoolIdle        prometheus.GaugeFunc
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
// queueLen and budgetRemaining report live pipeline state.
func InitMetrics(pool *pgxpool.Pool, queueLen, budgetRemaining func() int) {
	Metrics.JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factcheck_jobs_processed_total",
			Help: "Fact-check jobs that produced a result, by winning stage and verdict.",
		},
		[]string{"stage", "verdict"},
	)

	Metrics.JobsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factcheck_jobs_skipped_total",
			Help: "Fact-check jobs that ended without writing a result, by reason.",
		},
		[]string{"reason"},
	)

	Metrics.AICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factcheck_ai_calls_total",
			Help: "Gemini classification calls, by outcome (ok or failure code).",
		},
		[]string{"outcome"},
	)

	Metrics.AIBudgetSkips = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "factcheck_ai_budget_skips_total",
			Help: "AI stage skips caused by the hourly budget or spacing interval.",
		},
	)

	Metrics.TickDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "factcheck_job_tick_duration_seconds",
			Help:    "Duration of background job ticks, by job name.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "factcheck_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "factcheck_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	if budgetRemaining != nil {
		Metrics.AIBudgetRemaining = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "factcheck_ai_budget_remaining",
				Help: "AI calls left in the current hourly budget window.",
			},
			func() float64 {
				return float64(budgetRemaining())
			},
		)
		prometheus.MustRegister(Metrics.AIBudgetRemaining)
	}

	if queueLen != nil {
		Metrics.QueueDepth = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "factcheck_queue_depth",
				Help: "Jobs waiting in the classification queue.",
			},
			func() float64 {
				return float64(queueLen())
			},
		)
		prometheus.MustRegister(Metrics.QueueDepth)
	}

	// DB pool gauges read live stats from pgxpool.
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "factcheck_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "factcheck_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.JobsProcessed,
		Metrics.JobsSkipped,
		Metrics.AICalls,
		Metrics.AIBudgetSkips,
		Metrics.TickDuration,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
	)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/posts/"):
		return "/api/posts/:postId/factcheck"
	case strings.HasPrefix(path, "/api/trust/"):
		return "/api/trust/:subjectType/:subjectId"
	case strings.HasPrefix(path, "/api/admin/factcheck/run-all"):
		return "/api/admin/factcheck/run-all"
	case strings.HasPrefix(path, "/api/admin/factcheck/"):
		return "/api/admin/factcheck/:postId"
	case strings.HasPrefix(path, "/api/admin/trust/"):
		return "/api/admin/trust/:subjectType/:subjectId/recompute"
	default:
		return path
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
