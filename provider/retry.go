package provider

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kbukum/cosmosdb/errors"
)

// RetryConfig configures the retry middleware.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int `mapstructure:"max_attempts"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
	// Multiplier grows the delay after each retry.
	Multiplier float64 `mapstructure:"multiplier"`
	// Jitter randomizes each delay by up to this fraction (0.0 to 1.0).
	Jitter float64 `mapstructure:"jitter"`
	// RetryIf determines if an error should be retried.
	RetryIf func(error) bool `mapstructure:"-"`
	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, wait time.Duration) `mapstructure:"-"`
}

// DefaultRetryConfig returns sensible defaults. Only retryable AppErrors
// (connection failures and timeouts) are retried.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.1,
		RetryIf:        errors.IsRetryable,
	}
}

func (c *RetryConfig) applyDefaults() {
	d := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.Multiplier <= 0 {
		c.Multiplier = d.Multiplier
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		c.Jitter = d.Jitter
	}
	if c.RetryIf == nil {
		c.RetryIf = d.RetryIf
	}
}

// WithRetry returns a Middleware that re-executes the inner provider with
// exponential backoff while RetryIf accepts the returned error. Outputs
// returned without an error are never retried. Cancelling ctx stops the
// loop, including during a backoff wait.
func WithRetry[I, O any](cfg RetryConfig) Middleware[I, O] {
	cfg.applyDefaults()
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &retryRR[I, O]{inner: inner, cfg: cfg}
	}
}

type retryRR[I, O any] struct {
	inner RequestResponse[I, O]
	cfg   RetryConfig
}

func (r *retryRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *retryRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *retryRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	attempt := 0
	operation := func() (O, error) {
		attempt++
		output, err := r.inner.Execute(ctx, input)
		if err != nil && !r.cfg.RetryIf(err) {
			return output, backoff.Permanent(err)
		}
		return output, err
	}

	notify := func(err error, wait time.Duration) {
		if r.cfg.OnRetry != nil {
			r.cfg.OnRetry(attempt, err, wait)
		}
	}

	output, err := backoff.RetryNotifyWithData(operation, r.backOff(ctx), notify)
	if err != nil {
		err = r.contextError(ctx, err)
	}
	return output, err
}

func (r *retryRR[I, O]) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.cfg.InitialBackoff
	exp.MaxInterval = r.cfg.MaxBackoff
	exp.Multiplier = r.cfg.Multiplier
	exp.RandomizationFactor = r.cfg.Jitter
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.cfg.MaxAttempts-1)), ctx)
}

// contextError turns the bare context error backoff returns when ctx ends
// during a wait into the matching AppError.
func (r *retryRR[I, O]) contextError(ctx context.Context, err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, context.Canceled):
		return errors.Canceled(r.inner.Name(), err)
	case stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		return errors.Timeout(r.inner.Name(), err)
	}
	return err
}
