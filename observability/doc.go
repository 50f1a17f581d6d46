// Package observability provides OpenTelemetry tracing and metrics
// integration for guarded calls.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "guard.call")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	instruments, err := observability.NewInstruments(observability.Meter("my-service"))
//	instruments.RecordCall(ctx, "search_nodes", "ok", duration)
//
// The bridge is optional: the in-memory metrics collector remains the
// source of truth for summaries and health checks.
package observability
