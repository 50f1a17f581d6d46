package guard

import (
	"context"
	"errors"
	"time"

	"github.com/guardkit/guardkit/logger"
	"github.com/guardkit/guardkit/observability"
	"github.com/guardkit/guardkit/resilience"
)

// Do runs fn for one operation on behalf of one actor, applying the
// guard's rate limiter, circuit breaker and metrics collection.
// Rejections and operation errors return unchanged; rejections never
// invoke fn and never consume rate budget.
func Do[T any](ctx context.Context, g *Guard, operation, actor string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := observability.StartSpan(ctx, "guard.call")
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrOperationName, operation)
	observability.SetSpanAttribute(ctx, observability.AttrActor, actor)

	var zero T

	if err := g.limiter.Check(actor); err != nil {
		g.reject(ctx, operation, err)
		return zero, err
	}

	start := time.Now()
	result, err := resilience.DoWithResult(g.breaker, func() (T, error) {
		return fn(ctx)
	})
	elapsed := time.Since(start)

	if errors.Is(err, resilience.ErrCircuitOpen) {
		g.reject(ctx, operation, err)
		return zero, err
	}

	g.record(ctx, operation, elapsed, err)
	return result, err
}

// DoCached is Do with a cache consultation between the limiter and the
// breaker. A hit returns the cached value without touching the breaker;
// a successful call fills the cache under key with the default TTL.
func DoCached[T any](ctx context.Context, g *Guard, operation, actor, key string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := observability.StartSpan(ctx, "guard.call")
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrOperationName, operation)
	observability.SetSpanAttribute(ctx, observability.AttrActor, actor)

	var zero T

	if err := g.limiter.Check(actor); err != nil {
		g.reject(ctx, operation, err)
		return zero, err
	}

	if cached, ok := g.cache.Get(key); ok {
		if value, ok := cached.(T); ok {
			g.collector.RecordCacheHit()
			if g.instruments != nil {
				g.instruments.RecordCacheLookup(ctx, operation, true)
			}
			observability.SetSpanAttribute(ctx, observability.AttrCacheHit, true)
			return value, nil
		}
	}
	g.collector.RecordCacheMiss()
	if g.instruments != nil {
		g.instruments.RecordCacheLookup(ctx, operation, false)
	}
	observability.SetSpanAttribute(ctx, observability.AttrCacheHit, false)

	start := time.Now()
	result, err := resilience.DoWithResult(g.breaker, func() (T, error) {
		return fn(ctx)
	})
	elapsed := time.Since(start)

	if errors.Is(err, resilience.ErrCircuitOpen) {
		g.reject(ctx, operation, err)
		return zero, err
	}

	g.record(ctx, operation, elapsed, err)
	if err == nil {
		g.cache.Set(key, result)
	}
	return result, err
}

// record reports one completed call to the collector, the optional
// instruments and the span.
func (g *Guard) record(ctx context.Context, operation string, elapsed time.Duration, err error) {
	g.collector.RecordRequest(operation, elapsed, err != nil)

	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
		g.log.Debug("guarded call failed", logger.MergeWithError(
			logger.DurationFields(operation, elapsed), err,
		))
	}
	if g.instruments != nil {
		g.instruments.RecordCall(ctx, operation, status, elapsed)
	}
}

// reject reports a call that never reached the remote service. The
// rejection counts as an error under the operation; it costs no latency
// sample worth keeping, so zero is recorded.
func (g *Guard) reject(ctx context.Context, operation string, err error) {
	g.collector.RecordRequest(operation, 0, true)
	observability.SetSpanError(ctx, err)
	if g.instruments != nil {
		g.instruments.RecordRejection(ctx, operation, rejectionReason(err))
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, resilience.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	default:
		return "unknown"
	}
}
