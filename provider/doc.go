// Package provider defines the generic request/response provider contract
// and the middleware that wraps it.
//
// A RequestResponse[I, O] takes one input and returns one output. The HTTP
// adapter and the document operations both satisfy it, so cross-cutting
// behavior composes the same way around either:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("my-service"),
//	    provider.WithRetry[In, Out](provider.DefaultRetryConfig()),
//	)(rawProvider)
//
// Middleware only sees Go errors. Outcomes a provider reports as values,
// such as a classified store failure, pass through untouched.
package provider
