package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows requests to pass through.
	StateClosed State = iota
	// StateOpen blocks all requests.
	StateOpen
	// StateHalfOpen allows requests through to test recovery.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is the sentinel matched by errors.Is for circuit-open
// rejections. The concrete error returned is *CircuitOpenError, which
// carries the service name.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitOpenError is returned when a call is rejected because the
// circuit is open.
type CircuitOpenError struct {
	// Service is the name of the guarded downstream service.
	Service string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker is open for %s: service unavailable", e.Service)
}

// Is reports whether target is ErrCircuitOpen.
func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

// CircuitBreakerConfig configures a circuit breaker.
// All thresholds are immutable once the breaker is constructed.
type CircuitBreakerConfig struct {
	// Name identifies the guarded service for errors, metrics and logging.
	Name string
	// FailureThreshold is the number of consecutive failures in the closed
	// state before the circuit opens. Must be positive.
	FailureThreshold int
	// RecoveryTimeout is how long the circuit stays open before the next
	// call is allowed through to probe recovery. Must be positive.
	RecoveryTimeout time.Duration
	// SuccessThreshold is the number of consecutive successes in the
	// half-open state required to close the circuit. Must be positive.
	SuccessThreshold int
	// OnStateChange is called after every state transition.
	OnStateChange func(name string, from, to State)
}

// DefaultCircuitBreakerConfig returns sensible defaults: open after 5
// failures, probe recovery after 60s, close after 2 successes.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		RecoveryTimeout:  60 * time.Second,
		SuccessThreshold: 2,
	}
}

// CircuitBreaker implements the circuit breaker pattern.
// It prevents cascading failures by failing fast when a service is unhealthy.
//
// States:
//   - Closed: normal operation, requests pass through
//   - Open: service is unhealthy, requests fail immediately
//   - Half-Open: testing if service recovered
//
// One breaker instance guards one logical downstream service.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
// It fails if any threshold in the config is not strictly positive;
// misconfiguration surfaces at construction, never at call time.
func NewCircuitBreaker(config CircuitBreakerConfig) (*CircuitBreaker, error) {
	if config.FailureThreshold <= 0 {
		return nil, fmt.Errorf("circuit breaker %q: failure threshold must be positive, got %d", config.Name, config.FailureThreshold)
	}
	if config.RecoveryTimeout <= 0 {
		return nil, fmt.Errorf("circuit breaker %q: recovery timeout must be positive, got %s", config.Name, config.RecoveryTimeout)
	}
	if config.SuccessThreshold <= 0 {
		return nil, fmt.Errorf("circuit breaker %q: success threshold must be positive, got %d", config.Name, config.SuccessThreshold)
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}, nil
}

// Do runs the given function through the circuit breaker.
// Returns *CircuitOpenError without invoking fn if the circuit is open.
// Any error returned by fn is counted and then returned unchanged: the
// breaker observes failures, it never wraps or swallows them.
//
// The breaker imposes no deadline on fn; timeout policy belongs to the
// caller, which should surface a timeout as an error so it is counted.
func (cb *CircuitBreaker) Do(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn()
	cb.afterCall(err)
	return err
}

// DoWithResult runs a function that returns a value through the breaker.
func DoWithResult[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var result T
	err := cb.Do(func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

// beforeCall gates the call. The recovery check runs before the open gate,
// so a stale open breaker promotes itself to half-open on the very call
// that would otherwise be rejected. Check and transition happen under one
// lock so concurrent callers cannot both promote and double-reset counters.
func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.config.RecoveryTimeout {
		cb.transition(StateHalfOpen)
	}

	if cb.state == StateOpen {
		return &CircuitOpenError{Service: cb.config.Name}
	}
	return nil
}

// afterCall records the outcome of an executed call.
func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
}

// onSuccess handles a successful request. Caller holds the lock.
func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.transition(StateClosed)
		}
	case StateClosed:
		// A single success forgives prior failures.
		cb.failures = 0
	}
}

// onFailure handles a failed request. Caller holds the lock.
func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	cb.lastFailure = time.Now()

	switch cb.state {
	case StateHalfOpen:
		// A single half-open failure is a full regression.
		cb.transition(StateOpen)
	case StateClosed:
		if cb.failures >= cb.config.FailureThreshold {
			cb.transition(StateOpen)
		}
	}
}

// transition moves to a new state and resets the counters that are only
// meaningful in the state being left. Caller holds the lock.
func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to

	switch to {
	case StateClosed:
		cb.failures = 0
		cb.successes = 0
	case StateHalfOpen, StateOpen:
		cb.successes = 0
	}

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}

// State returns the current circuit breaker state. It is a pure read:
// the open-to-half-open promotion only ever happens inside Do.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the breaker to the closed state with all counters zeroed.
// Usable as a manual override regardless of the current state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClosed)
	cb.failures = 0
	cb.successes = 0
	cb.lastFailure = time.Time{}
}

// CircuitBreakerStats is a read-only snapshot of a breaker.
type CircuitBreakerStats struct {
	Service          string        `json:"service"`
	State            string        `json:"state"`
	Failures         int           `json:"failure_count"`
	Successes        int           `json:"success_count"`
	FailureThreshold int           `json:"failure_threshold"`
	RecoveryTimeout  time.Duration `json:"recovery_timeout"`
	SuccessThreshold int           `json:"success_threshold"`
	// LastFailure is the zero time if no failure has been recorded.
	LastFailure time.Time `json:"last_failure_time"`
}

// Stats returns a snapshot of the breaker for external reporting.
// It never mutates breaker state.
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerStats{
		Service:          cb.config.Name,
		State:            cb.state.String(),
		Failures:         cb.failures,
		Successes:        cb.successes,
		FailureThreshold: cb.config.FailureThreshold,
		RecoveryTimeout:  cb.config.RecoveryTimeout,
		SuccessThreshold: cb.config.SuccessThreshold,
		LastFailure:      cb.lastFailure,
	}
}
