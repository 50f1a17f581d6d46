// Package guard composes the resilience and observability components
// into a single wrapper for calls to one remote service.
//
// A Guard applies, in order: per-actor rate limiting (rejecting before
// any work), optional response caching, and circuit breaking around the
// actual call. Every outcome is recorded to an in-memory metrics
// collector; an OpenTelemetry bridge can be attached for export.
//
//	g, err := guard.New(guard.Config{Service: "node-registry"})
//	if err != nil {
//	    return err
//	}
//
//	nodes, err := guard.DoCached(ctx, g, "list_nodes", actor, cacheKey,
//	    func(ctx context.Context) ([]Node, error) {
//	        return client.ListNodes(ctx)
//	    })
//
// Rejections surface as resilience.ErrRateLimited or a
// *resilience.CircuitOpenError; operation errors pass through unchanged.
// The guard never retries.
package guard
