package utils

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aliado",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aliado",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	paymentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aliado",
			Subsystem: "payments",
			Name:      "operations_total",
			Help:      "Charges, refunds and invoices by gateway and outcome.",
		},
		[]string{"gateway", "operation", "outcome"},
	)

	strikesApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aliado",
			Subsystem: "scheduler",
			Name:      "strikes_total",
			Help:      "Strikes applied to lawyers by reason.",
		},
		[]string{"reason"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aliado",
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduled job executions.",
		},
		[]string{"job", "success"},
	)

	dependencyUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "aliado",
			Subsystem: "health",
			Name:      "dependency_up",
			Help:      "1 when the dependency answered the last health probe.",
		},
		[]string{"dependency"},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, paymentOps, strikesApplied, jobRuns, dependencyUp)
}

// MetricsMiddleware records request counts and latency per route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler exposes the registry for scraping.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// RecordPayment counts a gateway operation.
func RecordPayment(gateway, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	paymentOps.WithLabelValues(gateway, operation, outcome).Inc()
}

// RecordStrike counts a strike applied for reason.
func RecordStrike(reason string) {
	strikesApplied.WithLabelValues(reason).Inc()
}

// RecordJobRun counts a scheduled job execution.
func RecordJobRun(job string, err error) {
	jobRuns.WithLabelValues(job, strconv.FormatBool(err == nil)).Inc()
}

// SetDependencyHealth mirrors a health snapshot into gauges.
func SetDependencyHealth(status HealthStatus) {
	dependencyUp.WithLabelValues("mongo").Set(boolGauge(status.Mongo))
	for name, ok := range status.Redis {
		dependencyUp.WithLabelValues("redis_" + name).Set(boolGauge(ok))
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
