package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/guardkit/guardkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Instruments holds OpenTelemetry metric instruments for guarded calls.
type Instruments struct {
	callTotal       metric.Int64Counter
	callDuration    metric.Float64Histogram
	rejectionTotal  metric.Int64Counter
	cacheLookup     metric.Int64Counter
	transitionTotal metric.Int64Counter
}

// NewInstruments creates metric instruments on the given meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	callTotal, err := meter.Int64Counter("guard.call.total",
		metric.WithDescription("Total number of guarded calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.call.total counter: %w", err)
	}

	callDuration, err := meter.Float64Histogram("guard.call.duration",
		metric.WithDescription("Duration of guarded calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.call.duration histogram: %w", err)
	}

	rejectionTotal, err := meter.Int64Counter("guard.rejection.total",
		metric.WithDescription("Calls rejected before reaching the remote service"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.rejection.total counter: %w", err)
	}

	cacheLookup, err := meter.Int64Counter("guard.cache.lookup.total",
		metric.WithDescription("Cache lookups by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.cache.lookup.total counter: %w", err)
	}

	transitionTotal, err := meter.Int64Counter("guard.breaker.transition.total",
		metric.WithDescription("Circuit breaker state transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.breaker.transition.total counter: %w", err)
	}

	return &Instruments{
		callTotal:       callTotal,
		callDuration:    callDuration,
		rejectionTotal:  rejectionTotal,
		cacheLookup:     cacheLookup,
		transitionTotal: transitionTotal,
	}, nil
}

// RecordCall records a completed guarded call.
func (i *Instruments) RecordCall(ctx context.Context, operation, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	i.callTotal.Add(ctx, 1, attrs)
	i.callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordRejection records a call rejected by the limiter or breaker.
func (i *Instruments) RecordRejection(ctx context.Context, operation, reason string) {
	i.rejectionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", reason),
	))
}

// RecordCacheLookup records a cache hit or miss.
func (i *Instruments) RecordCacheLookup(ctx context.Context, operation string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	i.cacheLookup.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("result", result),
	))
}

// RecordTransition records a circuit breaker state change.
func (i *Instruments) RecordTransition(ctx context.Context, service, from, to string) {
	i.transitionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}
