package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guardkit/guardkit/metrics"
	"github.com/guardkit/guardkit/resilience"
	"github.com/guardkit/guardkit/version"
)

// Healthz returns a handler that reports the collector's health verdict.
// Responds 503 when the overall status is unhealthy.
func Healthz(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := collector.CheckHealth()

		httpStatus := http.StatusOK
		if health.Status == metrics.StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, health)
	}
}

// Metrics returns a handler that reports the collector's full summary.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, collector.Summary())
	}
}

// Breaker returns a handler that reports a circuit breaker snapshot.
func Breaker(breaker *resilience.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, breaker.Stats())
	}
}

// Version returns a handler that reports build version information.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.GetVersionInfo()
		c.JSON(http.StatusOK, gin.H{
			"version":    v.Version,
			"git_commit": v.GitCommit,
			"git_branch": v.GitBranch,
			"build_time": v.BuildTime,
			"go_version": v.GoVersion,
			"is_release": v.IsRelease,
			"is_dirty":   v.IsDirty,
		})
	}
}
