package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned when an actor exceeds its request budget.
// It is distinguishable from all other errors so callers can map it to a
// retry-after response.
var ErrRateLimited = errors.New("rate limit exceeded")

// rateWindow is the trailing interval the limiter evaluates. The limit is
// per minute, so the window is fixed rather than configurable.
const rateWindow = time.Minute

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	// Name identifies this rate limiter for metrics/logging.
	Name string
	// MaxPerMinute is the number of requests allowed per actor within any
	// trailing 60-second interval. Must be positive.
	MaxPerMinute int
	// OnLimit is called when a request is rate limited.
	OnLimit func(name, actor string)
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig(name string) RateLimiterConfig {
	return RateLimiterConfig{
		Name:         name,
		MaxPerMinute: 60,
	}
}

// RateLimiter implements a strict per-actor sliding-window rate limiter.
// It rejects exactly when more than MaxPerMinute requests from the same
// actor fall within any trailing 60-second interval, not a fixed calendar
// window and not a token bucket.
type RateLimiter struct {
	config RateLimiterConfig

	mu      sync.Mutex
	buckets map[string][]time.Time
}

// NewRateLimiter creates a new rate limiter.
// It fails if MaxPerMinute is not strictly positive.
func NewRateLimiter(config RateLimiterConfig) (*RateLimiter, error) {
	if config.MaxPerMinute <= 0 {
		return nil, fmt.Errorf("rate limiter %q: max per minute must be positive, got %d", config.Name, config.MaxPerMinute)
	}

	return &RateLimiter{
		config:  config,
		buckets: make(map[string][]time.Time),
	}, nil
}

// Check records one request attempt for the actor. It returns
// ErrRateLimited when the actor's budget for the trailing window is
// exhausted; a rejected attempt does not consume budget.
func (rl *RateLimiter) Check(actor string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateWindow)

	// Timestamps are appended in order, so stale entries form a prefix.
	bucket := rl.buckets[actor]
	trim := 0
	for trim < len(bucket) && bucket[trim].Before(cutoff) {
		trim++
	}
	bucket = bucket[trim:]

	if len(bucket) >= rl.config.MaxPerMinute {
		rl.buckets[actor] = bucket
		if rl.config.OnLimit != nil {
			rl.config.OnLimit(rl.config.Name, actor)
		}
		return ErrRateLimited
	}

	rl.buckets[actor] = append(bucket, now)
	return nil
}

// Remaining returns how many requests the actor may still make within the
// current trailing window. It does not consume budget.
func (rl *RateLimiter) Remaining(actor string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rateWindow)
	used := 0
	for _, ts := range rl.buckets[actor] {
		if !ts.Before(cutoff) {
			used++
		}
	}
	if used >= rl.config.MaxPerMinute {
		return 0
	}
	return rl.config.MaxPerMinute - used
}

// MaxPerMinute returns the configured per-actor budget.
func (rl *RateLimiter) MaxPerMinute() int {
	return rl.config.MaxPerMinute
}

// Reset discards all recorded request history for every actor.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.buckets = make(map[string][]time.Time)
}
