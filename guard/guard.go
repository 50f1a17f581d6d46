package guard

import (
	"context"

	"github.com/guardkit/guardkit/cache"
	"github.com/guardkit/guardkit/logger"
	"github.com/guardkit/guardkit/metrics"
	"github.com/guardkit/guardkit/observability"
	"github.com/guardkit/guardkit/resilience"
)

// Config assembles the components of a Guard. Zero-value sections fall
// back to component defaults; Logger and Instruments are optional.
type Config struct {
	// Service names the guarded remote service for logs and breaker stats.
	Service string

	Breaker   resilience.CircuitBreakerConfig
	RateLimit resilience.RateLimiterConfig
	Cache     cache.Config
	Metrics   metrics.CollectorConfig

	// Logger receives rejection and transition events. Defaults to the
	// global logger tagged with the guard component.
	Logger *logger.Logger

	// Instruments is the optional OTel bridge. Nil disables it.
	Instruments *observability.Instruments
}

// Guard wraps calls to one remote service with rate limiting, response
// caching, circuit breaking and metrics collection.
//
// Ordering per call: the limiter rejects before any work happens, the
// cache can satisfy the call without touching the breaker, and only
// then does the breaker gate the actual invocation. Metrics are side
// effects and never block the call path.
type Guard struct {
	service     string
	limiter     *resilience.RateLimiter
	breaker     *resilience.CircuitBreaker
	collector   *metrics.Collector
	cache       *cache.Cache[any]
	log         *logger.Logger
	instruments *observability.Instruments
}

// New builds a Guard from config. Component construction errors
// propagate unchanged.
func New(cfg Config) (*Guard, error) {
	if cfg.Service == "" {
		cfg.Service = "remote"
	}

	log := cfg.Logger
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("guard")
	}

	collector := metrics.New(cfg.Metrics)

	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = cfg.Service
	}
	if cfg.Breaker.FailureThreshold == 0 && cfg.Breaker.RecoveryTimeout == 0 && cfg.Breaker.SuccessThreshold == 0 {
		defaults := resilience.DefaultCircuitBreakerConfig(cfg.Breaker.Name)
		defaults.OnStateChange = cfg.Breaker.OnStateChange
		cfg.Breaker = defaults
	}

	// Transitions flow to the collector and the log before any
	// caller-provided callback.
	userOnStateChange := cfg.Breaker.OnStateChange
	instruments := cfg.Instruments
	cfg.Breaker.OnStateChange = func(name string, from, to resilience.State) {
		collector.RecordBreakerTransition(name, from.String(), to.String())
		log.Warn("circuit breaker state change", logger.Fields(
			logger.FieldService, name,
			"from", from.String(),
			"to", to.String(),
		))
		if instruments != nil {
			instruments.RecordTransition(context.Background(), name, from.String(), to.String())
		}
		if userOnStateChange != nil {
			userOnStateChange(name, from, to)
		}
	}

	breaker, err := resilience.NewCircuitBreaker(cfg.Breaker)
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit.Name == "" {
		cfg.RateLimit.Name = cfg.Service
	}
	if cfg.RateLimit.MaxPerMinute == 0 {
		cfg.RateLimit.MaxPerMinute = 60
	}
	userOnLimit := cfg.RateLimit.OnLimit
	cfg.RateLimit.OnLimit = func(name, actor string) {
		log.Warn("rate limit exceeded", logger.Fields(
			logger.FieldService, name,
			logger.FieldActor, actor,
		))
		if userOnLimit != nil {
			userOnLimit(name, actor)
		}
	}

	limiter, err := resilience.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.DefaultTTL == 0 {
		cfg.Cache = cache.DefaultConfig()
	}
	responseCache, err := cache.New[any](cfg.Cache)
	if err != nil {
		return nil, err
	}

	return &Guard{
		service:     cfg.Service,
		limiter:     limiter,
		breaker:     breaker,
		collector:   collector,
		cache:       responseCache,
		log:         log,
		instruments: instruments,
	}, nil
}

// Service returns the guarded service name.
func (g *Guard) Service() string { return g.service }

// Limiter returns the rate limiter.
func (g *Guard) Limiter() *resilience.RateLimiter { return g.limiter }

// Breaker returns the circuit breaker.
func (g *Guard) Breaker() *resilience.CircuitBreaker { return g.breaker }

// Collector returns the metrics collector.
func (g *Guard) Collector() *metrics.Collector { return g.collector }

// Cache returns the response cache.
func (g *Guard) Cache() *cache.Cache[any] { return g.cache }

// Reset restores every component to its initial state.
func (g *Guard) Reset() {
	g.limiter.Reset()
	g.breaker.Reset()
	g.cache.Clear()
	g.collector.Reset()
}
