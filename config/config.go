package config

import (
	"fmt"
	"time"

	"github.com/guardkit/guardkit/cache"
	"github.com/guardkit/guardkit/logger"
	"github.com/guardkit/guardkit/metrics"
	"github.com/guardkit/guardkit/resilience"
	"github.com/guardkit/guardkit/validation"
)

// Config is the top-level configuration for a guarded service.
// Projects embed or load it via Load.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Breaker   BreakerConfig   `yaml:"breaker" mapstructure:"breaker"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	Service          string        `json:"service" yaml:"service" mapstructure:"service"`
	FailureThreshold int           `json:"failure_threshold" yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"gt=0"`
	RecoveryTimeout  time.Duration `json:"recovery_timeout" yaml:"recovery_timeout" mapstructure:"recovery_timeout" validate:"gt=0"`
	SuccessThreshold int           `json:"success_threshold" yaml:"success_threshold" mapstructure:"success_threshold" validate:"gt=0"`
}

// RateLimitConfig configures the per-actor rate limiter.
type RateLimitConfig struct {
	Name         string `json:"name" yaml:"name" mapstructure:"name"`
	MaxPerMinute int    `json:"max_per_minute" yaml:"max_per_minute" mapstructure:"max_per_minute" validate:"gt=0"`
}

// CacheConfig configures the TTL cache.
type CacheConfig struct {
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl" mapstructure:"default_ttl" validate:"gt=0"`
}

// MetricsConfig configures the metrics collector.
type MetricsConfig struct {
	Window time.Duration `json:"window" yaml:"window" mapstructure:"window" validate:"gt=0"`
}

// TelemetryConfig configures the optional OTel bridge.
type TelemetryConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `json:"insecure" yaml:"insecure" mapstructure:"insecure"`
}

// ApplyDefaults applies default values to all sections.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()

	if c.Breaker.Service == "" {
		c.Breaker.Service = c.Name
	}
	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = 5
	}
	if c.Breaker.RecoveryTimeout == 0 {
		c.Breaker.RecoveryTimeout = 60 * time.Second
	}
	if c.Breaker.SuccessThreshold == 0 {
		c.Breaker.SuccessThreshold = 2
	}

	if c.RateLimit.Name == "" {
		c.RateLimit.Name = c.Name
	}
	if c.RateLimit.MaxPerMinute == 0 {
		c.RateLimit.MaxPerMinute = 60
	}

	if c.Cache.DefaultTTL == 0 {
		c.Cache.DefaultTTL = time.Hour
	}

	if c.Metrics.Window == 0 {
		c.Metrics.Window = 5 * time.Minute
	}

	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
}

// Validate validates the configuration. Call after ApplyDefaults.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := validation.Validate(c.Breaker); err != nil {
		return fmt.Errorf("config.breaker: %w", err)
	}
	if err := validation.Validate(c.RateLimit); err != nil {
		return fmt.Errorf("config.rate_limit: %w", err)
	}
	if err := validation.Validate(c.Cache); err != nil {
		return fmt.Errorf("config.cache: %w", err)
	}
	if err := validation.Validate(c.Metrics); err != nil {
		return fmt.Errorf("config.metrics: %w", err)
	}
	return nil
}

// BreakerSettings converts the breaker section into a circuit breaker config.
func (c *Config) BreakerSettings() resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Name:             c.Breaker.Service,
		FailureThreshold: c.Breaker.FailureThreshold,
		RecoveryTimeout:  c.Breaker.RecoveryTimeout,
		SuccessThreshold: c.Breaker.SuccessThreshold,
	}
}

// RateLimitSettings converts the rate limit section into a limiter config.
func (c *Config) RateLimitSettings() resilience.RateLimiterConfig {
	return resilience.RateLimiterConfig{
		Name:         c.RateLimit.Name,
		MaxPerMinute: c.RateLimit.MaxPerMinute,
	}
}

// CacheSettings converts the cache section into a cache config.
func (c *Config) CacheSettings() cache.Config {
	return cache.Config{DefaultTTL: c.Cache.DefaultTTL}
}

// CollectorSettings converts the metrics section into a collector config.
func (c *Config) CollectorSettings() metrics.CollectorConfig {
	return metrics.CollectorConfig{Window: c.Metrics.Window}
}
