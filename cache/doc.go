// Package cache provides a generic in-memory TTL cache for slow-changing
// remote lookups, so a guarded call can be skipped entirely on a hit.
//
// Entries expire lazily: an expired entry is removed when Get observes it
// or when CleanupExpired sweeps. The cache is safe for concurrent use and
// holds state for the life of the process only.
//
//	c, _ := cache.New[NodeType](cache.DefaultConfig())
//	c.Set("node:http", nt)
//	if nt, ok := c.Get("node:http"); ok {
//	    return nt, nil
//	}
package cache
