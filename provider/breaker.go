package provider

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/cosmosdb/errors"
)

// State is a circuit breaker state.
type State int

const (
	// StateClosed lets calls through.
	StateClosed State = iota
	// StateOpen rejects calls without running them.
	StateOpen
	// StateHalfOpen lets a limited number of trial calls through.
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

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures"`
	// OpenTimeout is how long the circuit stays open before trial calls.
	OpenTimeout time.Duration `yaml:"open_timeout" mapstructure:"open_timeout"`
	// HalfOpenMaxCalls is the number of trial calls allowed while half-open.
	HalfOpenMaxCalls int `yaml:"half_open_max_calls" mapstructure:"half_open_max_calls"`
	// TripIf decides which errors count as failures. Defaults to
	// errors.IsRetryable, so cancellations and invalid input never trip.
	TripIf func(error) bool `yaml:"-" mapstructure:"-"`
	// OnStateChange is called after each transition, outside the breaker lock.
	OnStateChange func(name string, from, to State) `yaml:"-" mapstructure:"-"`
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:      5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 1,
		TripIf:           errors.IsRetryable,
	}
}

func (c *CircuitBreakerConfig) applyDefaults() {
	d := DefaultCircuitBreakerConfig()
	if c.MaxFailures <= 0 {
		c.MaxFailures = d.MaxFailures
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.HalfOpenMaxCalls <= 0 {
		c.HalfOpenMaxCalls = d.HalfOpenMaxCalls
	}
	if c.TripIf == nil {
		c.TripIf = d.TripIf
	}
}

// CircuitBreaker fails fast once an account keeps failing. One breaker can
// guard several providers that talk to the same account.
type CircuitBreaker struct {
	name   string
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	halfOpenCalls int
	openedAt      time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	cfg.applyDefaults()
	return &CircuitBreaker{name: name, config: cfg}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	state, change := cb.currentState()
	cb.mu.Unlock()
	cb.notify(change)
	return state
}

// Reset closes the circuit and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	change := cb.toState(StateClosed)
	cb.failures = 0
	cb.mu.Unlock()
	cb.notify(change)
}

type stateChange struct {
	from, to State
}

func (cb *CircuitBreaker) notify(change *stateChange) {
	if change != nil && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.name, change.from, change.to)
	}
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	state, change := cb.currentState()
	allowed := false
	switch state {
	case StateClosed:
		allowed = true
	case StateHalfOpen:
		if cb.halfOpenCalls < cb.config.HalfOpenMaxCalls {
			cb.halfOpenCalls++
			allowed = true
		}
	}
	cb.mu.Unlock()
	cb.notify(change)
	return allowed
}

// record books one call. counted is false for outcomes that say nothing
// about the account's health, such as a cancellation.
func (cb *CircuitBreaker) record(failed, counted bool) {
	cb.mu.Lock()
	state, expired := cb.currentState()
	var change *stateChange
	switch {
	case !counted:
		if state == StateHalfOpen && cb.halfOpenCalls > 0 {
			cb.halfOpenCalls--
		}
	case failed:
		cb.failures++
		if state == StateHalfOpen || cb.failures >= cb.config.MaxFailures {
			change = cb.toState(StateOpen)
		}
	default:
		switch state {
		case StateClosed:
			cb.failures = 0
		case StateHalfOpen:
			cb.successes++
			if cb.successes >= cb.config.HalfOpenMaxCalls {
				change = cb.toState(StateClosed)
			}
		}
	}
	cb.mu.Unlock()
	cb.notify(expired)
	cb.notify(change)
}

// currentState moves an expired open circuit to half-open. Callers hold mu.
func (cb *CircuitBreaker) currentState() (State, *stateChange) {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.config.OpenTimeout {
		return StateHalfOpen, cb.toState(StateHalfOpen)
	}
	return cb.state, nil
}

func (cb *CircuitBreaker) toState(to State) *stateChange {
	if cb.state == to {
		return nil
	}
	from := cb.state
	cb.state = to
	cb.successes = 0
	cb.halfOpenCalls = 0
	switch to {
	case StateClosed:
		cb.failures = 0
	case StateOpen:
		cb.openedAt = time.Now()
	}
	return &stateChange{from: from, to: to}
}

// WithCircuitBreaker returns a Middleware that rejects calls with a
// CIRCUIT_OPEN error while cb is open. Errors accepted by TripIf count as
// failures; other errors are not counted. outputFailed, when not nil, also
// counts outputs returned without an error, e.g. a throttled result.
func WithCircuitBreaker[I, O any](cb *CircuitBreaker, outputFailed func(O) bool) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &breakerRR[I, O]{inner: inner, cb: cb, outputFailed: outputFailed}
	}
}

type breakerRR[I, O any] struct {
	inner        RequestResponse[I, O]
	cb           *CircuitBreaker
	outputFailed func(O) bool
}

func (b *breakerRR[I, O]) Name() string { return b.inner.Name() }

// IsAvailable reports false while the circuit is open.
func (b *breakerRR[I, O]) IsAvailable(ctx context.Context) bool {
	return b.cb.State() != StateOpen && b.inner.IsAvailable(ctx)
}

func (b *breakerRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	if !b.cb.allow() {
		var zero O
		return zero, errors.CircuitOpen(b.cb.name)
	}

	output, err := b.inner.Execute(ctx, input)
	switch {
	case err != nil:
		tripped := b.cb.config.TripIf(err)
		b.cb.record(tripped, tripped)
	case b.outputFailed != nil && b.outputFailed(output):
		b.cb.record(true, true)
	default:
		b.cb.record(false, true)
	}
	return output, err
}
