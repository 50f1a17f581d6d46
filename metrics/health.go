package metrics

import (
	"fmt"
	"time"
)

// Status is the health verdict of a check or of the system overall.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// worseThan orders statuses: unhealthy > degraded > healthy.
func (s Status) worseThan(other Status) bool {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	return rank[s] > rank[other]
}

// Check is the result of one health check.
type Check struct {
	Status  Status  `json:"status"`
	Value   float64 `json:"value,omitempty"`
	Message string  `json:"message"`
}

// HealthStatus is the overall verdict plus per-check detail.
type HealthStatus struct {
	Status    Status           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Timestamp time.Time        `json:"timestamp"`
}

// Health check thresholds.
const (
	errorRateThreshold = 0.1
	latencyWarning     = 1000 * time.Millisecond
	latencyCritical    = 3000 * time.Millisecond
	cacheHitThreshold  = 0.5
	cacheMinLookups    = 10
)

// CheckHealth evaluates the error rate, request rate, average latency
// and cache effectiveness checks and reports the worst of them as the
// overall status.
func (c *Collector) CheckHealth() HealthStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	checks := make(map[string]Check, 4)

	errorRate := c.errorRateLocked("")
	errStatus := StatusHealthy
	if errorRate >= errorRateThreshold {
		errStatus = StatusUnhealthy
	}
	checks["error_rate"] = Check{
		Status:  errStatus,
		Value:   errorRate,
		Message: fmt.Sprintf("Error rate: %.2f%%", errorRate*100),
	}

	// Request rate is informational only; an idle process is not sick.
	requestRate := c.requestRateLocked("")
	checks["request_rate"] = Check{
		Status:  StatusHealthy,
		Value:   requestRate,
		Message: fmt.Sprintf("Request rate: %.2f req/s", requestRate),
	}

	avgLatency := c.averageLatencyLocked("")
	latencyStatus := StatusHealthy
	switch {
	case avgLatency >= latencyCritical:
		latencyStatus = StatusUnhealthy
	case avgLatency >= latencyWarning:
		latencyStatus = StatusDegraded
	}
	checks["latency"] = Check{
		Status:  latencyStatus,
		Value:   durationMS(avgLatency),
		Message: fmt.Sprintf("Average latency: %.0fms", durationMS(avgLatency)),
	}

	// Cache effectiveness only means something once there is data.
	if c.cacheHits+c.cacheMisses >= cacheMinLookups {
		hitRate := c.cacheHitRateLocked()
		cacheStatus := StatusHealthy
		if hitRate <= cacheHitThreshold {
			cacheStatus = StatusDegraded
		}
		checks["cache"] = Check{
			Status:  cacheStatus,
			Value:   hitRate,
			Message: fmt.Sprintf("Cache hit rate: %.0f%%", hitRate*100),
		}
	} else {
		checks["cache"] = Check{
			Status:  StatusHealthy,
			Message: "Insufficient cache data for evaluation",
		}
	}

	overall := StatusHealthy
	for _, check := range checks {
		if check.Status.worseThan(overall) {
			overall = check.Status
		}
	}

	return HealthStatus{
		Status:    overall,
		Checks:    checks,
		Timestamp: time.Now(),
	}
}
