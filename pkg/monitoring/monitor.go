package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuizSessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Total number of quiz sessions started",
		},
	)

	QuizSessionsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_completed_total",
			Help: "Total number of quiz sessions completed",
		},
	)

	CatalogSnapshotsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_snapshots_published_total",
			Help: "Total number of catalog snapshots published",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(QuizSessionsStarted)
	prometheus.MustRegister(QuizSessionsCompleted)
	prometheus.MustRegister(CatalogSnapshotsPublished)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
