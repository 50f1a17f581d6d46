// Package metrics collects request outcomes, cache effectiveness and
// circuit breaker transitions in memory and derives rates, latency
// percentiles and a composite health verdict from them.
//
// A single Collector serves one process. Recording methods are cheap
// side effects intended to be called from hot paths; query methods and
// Summary produce point-in-time views for reporting endpoints.
//
//	collector := metrics.New(metrics.DefaultCollectorConfig())
//
//	start := time.Now()
//	err := doWork()
//	collector.RecordRequest("list_nodes", time.Since(start), err != nil)
//
//	health := collector.CheckHealth()
//	if health.Status != metrics.StatusHealthy {
//	    log.Warn().Str("status", string(health.Status)).Msg("degraded")
//	}
package metrics
