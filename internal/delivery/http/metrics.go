package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upcwizard_runs_total",
		Help: "Completed validation runs.",
	})

	runsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upcwizard_runs_failed_total",
		Help: "Validation runs aborted by an error.",
	})

	invalidRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upcwizard_invalid_records_total",
		Help: "Barcodes flagged invalid across all runs.",
	})

	recommendationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upcwizard_recommendations_total",
		Help: "Recommendations produced across all runs.",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upcwizard_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})
)

// MetricsMiddleware counts requests per route and status
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}

// MetricsHandler exposes the Prometheus registry
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
