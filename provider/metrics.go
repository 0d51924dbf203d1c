package provider

import (
	"context"
	"time"

	"github.com/kbukum/cosmosdb/errors"
	"github.com/kbukum/cosmosdb/observability"
)

// WithMetrics returns a Middleware that records the request counter,
// duration histogram, in-flight gauge and failure counter for each Execute.
// Failures are labelled with the AppError code when one is available.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	metrics *observability.Metrics
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	name := m.inner.Name()
	m.metrics.RecordRequestStart(ctx, name)
	start := time.Now()

	output, err := m.inner.Execute(ctx, input)

	outcome := "success"
	if err != nil {
		outcome = "error"
		code := "error"
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		m.metrics.RecordFailure(ctx, name, code)
	}
	m.metrics.RecordRequestEnd(ctx, name, outcome, time.Since(start))

	return output, err
}
