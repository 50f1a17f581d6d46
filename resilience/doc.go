// Package resilience provides the failure-handling primitives guardkit
// places in front of calls to a remote service.
//
// This package includes:
//   - CircuitBreaker: stops calling a failing downstream after repeated
//     failures and periodically probes recovery
//   - RateLimiter: strict per-actor sliding-window request budget
//   - Bulkhead: caps concurrent calls to isolate a slow dependency
//   - Retry: caller-side retries with exponential backoff
//
// The breaker and limiter fail loudly with distinguishable errors and
// never retry internally; retry policy is layered above by the caller:
//
//	cb, _ := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("billing-api"))
//	rl, _ := resilience.NewRateLimiter(resilience.RateLimiterConfig{Name: "billing-api", MaxPerMinute: 120})
//
//	if err := rl.Check(tenant); err != nil {
//	    return err // ErrRateLimited
//	}
//	err := cb.Do(func() error {
//	    return client.Fetch(ctx, req)
//	})
package resilience
