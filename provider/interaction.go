package provider

import "context"

// RequestResponse represents a provider that takes one input and returns one output.
// Document reads and partial updates against a store are both shaped this way.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}
