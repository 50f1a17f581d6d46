package metrics

import (
	"fmt"
	"strings"
	"time"
)

// Summary is a structured rollup of every metric the collector tracks,
// shaped for JSON serialization by a reporting endpoint.
type Summary struct {
	UptimeSeconds float64           `json:"uptime_seconds"`
	UptimeHuman   string            `json:"uptime_human"`
	Requests      RequestSummary    `json:"requests"`
	Errors        ErrorSummary      `json:"errors"`
	Latency       LatencySummary    `json:"latency"`
	Cache         CacheSummary      `json:"cache"`
	Breaker       TransitionSummary `json:"circuit_breaker"`
}

// RequestSummary aggregates request volume.
type RequestSummary struct {
	Total         int64            `json:"total"`
	ByOperation   map[string]int64 `json:"by_operation"`
	RatePerSecond float64          `json:"rate_per_second"`
}

// ErrorSummary aggregates error volume.
type ErrorSummary struct {
	Total       int64            `json:"total"`
	ByOperation map[string]int64 `json:"by_operation"`
	ErrorRate   float64          `json:"error_rate"`
}

// LatencySummary aggregates latency over the retained samples.
type LatencySummary struct {
	AverageMS float64 `json:"average_ms"`
	P95MS     float64 `json:"p95_ms"`
}

// CacheSummary aggregates cache effectiveness.
type CacheSummary struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// TransitionSummary aggregates circuit breaker state changes.
type TransitionSummary struct {
	Total  int64        `json:"state_changes"`
	Recent []Transition `json:"recent_changes"`
}

// Summary returns a point-in-time rollup of all metrics, including the
// most recent circuit breaker transitions.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	var totalRequests, totalErrors int64
	byOperation := make(map[string]int64, len(c.requestCounts))
	for op, n := range c.requestCounts {
		byOperation[op] = n
		totalRequests += n
	}
	errsByOperation := make(map[string]int64, len(c.errorCounts))
	for op, n := range c.errorCounts {
		errsByOperation[op] = n
		totalErrors += n
	}

	uptime := time.Since(c.startTime)

	return Summary{
		UptimeSeconds: uptime.Seconds(),
		UptimeHuman:   formatUptime(uptime),
		Requests: RequestSummary{
			Total:         totalRequests,
			ByOperation:   byOperation,
			RatePerSecond: c.requestRateLocked(""),
		},
		Errors: ErrorSummary{
			Total:       totalErrors,
			ByOperation: errsByOperation,
			ErrorRate:   c.errorRateLocked(""),
		},
		Latency: LatencySummary{
			AverageMS: durationMS(c.averageLatencyLocked("")),
			P95MS:     durationMS(c.p95LatencyLocked("")),
		},
		Cache: CacheSummary{
			Hits:    c.cacheHits,
			Misses:  c.cacheMisses,
			HitRate: c.cacheHitRateLocked(),
		},
		Breaker: TransitionSummary{
			Total:  c.transitionTotal,
			Recent: c.transitions.tail(recentTransitions),
		},
	}
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// formatUptime renders a duration as "1d 2h 3m 4s", omitting leading
// zero units.
func formatUptime(d time.Duration) string {
	seconds := int64(d.Seconds())

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", secs))

	return strings.Join(parts, " ")
}
