package metrics

import (
	"sort"
	"sync"
	"time"
)

// Buffer capacities. Request timestamps feed rate calculations over the
// trailing window; latency samples feed average/percentile queries and
// are capacity-bounded rather than time-windowed.
const (
	requestTimeCapacity = 1000
	latencyCapacity     = 100
	transitionCapacity  = 256
	recentTransitions   = 5
)

// CollectorConfig configures a metrics collector.
type CollectorConfig struct {
	// Window is the trailing interval for rate calculations.
	// Defaults to 5 minutes when not positive.
	Window time.Duration
}

// DefaultCollectorConfig returns the default configuration.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{Window: 5 * time.Minute}
}

// Transition records one circuit breaker state change.
type Transition struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	From      string    `json:"old_state"`
	To        string    `json:"new_state"`
}

// Collector aggregates request outcomes, cache effectiveness and circuit
// breaker transitions for one process, and derives rates, percentiles and
// a composite health verdict.
//
// The collector is informed, never invoked: call sites report outcomes as
// side effects after the fact, and nothing here blocks beyond one coarse
// mutex whose critical sections are microseconds.
type Collector struct {
	window time.Duration

	mu              sync.Mutex
	requestCounts   map[string]int64
	errorCounts     map[string]int64
	cacheHits       int64
	cacheMisses     int64
	requestTimes    map[string]*ringBuffer[time.Time]
	latencySamples  map[string]*ringBuffer[time.Duration]
	transitions     *ringBuffer[Transition]
	transitionTotal int64
	startTime       time.Time
}

// New creates a collector.
func New(cfg CollectorConfig) *Collector {
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Minute
	}

	return &Collector{
		window:         cfg.Window,
		requestCounts:  make(map[string]int64),
		errorCounts:    make(map[string]int64),
		requestTimes:   make(map[string]*ringBuffer[time.Time]),
		latencySamples: make(map[string]*ringBuffer[time.Duration]),
		transitions:    newRingBuffer[Transition](transitionCapacity),
		startTime:      time.Now(),
	}
}

// RecordRequest records one completed request for an operation:
// the per-operation counters, the timestamp used for rate queries and the
// latency sample used for percentile queries.
func (c *Collector) RecordRequest(operation string, latency time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestCounts[operation]++
	if failed {
		c.errorCounts[operation]++
	}

	times, ok := c.requestTimes[operation]
	if !ok {
		times = newRingBuffer[time.Time](requestTimeCapacity)
		c.requestTimes[operation] = times
	}
	times.append(time.Now())

	samples, ok := c.latencySamples[operation]
	if !ok {
		samples = newRingBuffer[time.Duration](latencyCapacity)
		c.latencySamples[operation] = samples
	}
	samples.append(latency)
}

// RecordCacheHit records a cache lookup that avoided a remote call.
func (c *Collector) RecordCacheHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheHits++
}

// RecordCacheMiss records a cache lookup that fell through.
func (c *Collector) RecordCacheMiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheMisses++
}

// RecordBreakerTransition appends a timestamped circuit breaker state
// change. Only the most recent transitions are retained.
func (c *Collector) RecordBreakerTransition(service, from, to string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transitionTotal++
	c.transitions.append(Transition{
		Timestamp: time.Now(),
		Service:   service,
		From:      from,
		To:        to,
	})
}

// RequestRate returns requests per second over the trailing window for one
// operation, or summed across all operations when operation is empty.
func (c *Collector) RequestRate(operation string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestRateLocked(operation)
}

func (c *Collector) requestRateLocked(operation string) float64 {
	cutoff := time.Now().Add(-c.window)

	countRecent := func(times *ringBuffer[time.Time]) int {
		recent := 0
		for _, ts := range times.snapshot() {
			if !ts.Before(cutoff) {
				recent++
			}
		}
		return recent
	}

	total := 0
	if operation != "" {
		if times, ok := c.requestTimes[operation]; ok {
			total = countRecent(times)
		}
	} else {
		for _, times := range c.requestTimes {
			total += countRecent(times)
		}
	}

	return float64(total) / c.window.Seconds()
}

// ErrorRate returns errors divided by total requests, in [0, 1].
// Returns 0 when nothing has been recorded.
func (c *Collector) ErrorRate(operation string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorRateLocked(operation)
}

func (c *Collector) errorRateLocked(operation string) float64 {
	var total, errs int64
	if operation != "" {
		total = c.requestCounts[operation]
		errs = c.errorCounts[operation]
	} else {
		for _, n := range c.requestCounts {
			total += n
		}
		for _, n := range c.errorCounts {
			errs += n
		}
	}

	if total == 0 {
		return 0.0
	}
	return float64(errs) / float64(total)
}

// AverageLatency returns the mean of the retained latency samples.
// Returns 0 when no samples are retained.
func (c *Collector) AverageLatency(operation string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.averageLatencyLocked(operation)
}

func (c *Collector) averageLatencyLocked(operation string) time.Duration {
	samples := c.latenciesLocked(operation)
	if len(samples) == 0 {
		return 0
	}

	var total time.Duration
	for _, s := range samples {
		total += s
	}
	return total / time.Duration(len(samples))
}

// P95Latency returns the 95th percentile of the retained latency samples
// using nearest-rank: sort ascending and take the element at
// floor(0.95 * n). Returns 0 when no samples are retained.
func (c *Collector) P95Latency(operation string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.p95LatencyLocked(operation)
}

func (c *Collector) p95LatencyLocked(operation string) time.Duration {
	samples := c.latenciesLocked(operation)
	if len(samples) == 0 {
		return 0
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return samples[int(float64(len(samples))*0.95)]
}

func (c *Collector) latenciesLocked(operation string) []time.Duration {
	if operation != "" {
		if samples, ok := c.latencySamples[operation]; ok {
			return samples.snapshot()
		}
		return nil
	}

	var all []time.Duration
	for _, samples := range c.latencySamples {
		all = append(all, samples.snapshot()...)
	}
	return all
}

// CacheHitRate returns hits divided by total cache lookups, in [0, 1].
// Returns 0 when no lookups have been recorded.
func (c *Collector) CacheHitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cacheHitRateLocked()
}

func (c *Collector) cacheHitRateLocked() float64 {
	total := c.cacheHits + c.cacheMisses
	if total == 0 {
		return 0.0
	}
	return float64(c.cacheHits) / float64(total)
}

// Uptime returns how long the collector has been running since
// construction or the last Reset.
func (c *Collector) Uptime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.startTime)
}

// Window returns the trailing interval used for rate calculations.
func (c *Collector) Window() time.Duration {
	return c.window
}

// Reset zeroes all counters, buffers and the start-time clock.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestCounts = make(map[string]int64)
	c.errorCounts = make(map[string]int64)
	c.cacheHits = 0
	c.cacheMisses = 0
	c.requestTimes = make(map[string]*ringBuffer[time.Time])
	c.latencySamples = make(map[string]*ringBuffer[time.Duration])
	c.transitions = newRingBuffer[Transition](transitionCapacity)
	c.transitionTotal = 0
	c.startTime = time.Now()
}
