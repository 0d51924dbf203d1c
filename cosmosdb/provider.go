package cosmosdb

import (
	"context"

	"github.com/kbukum/cosmosdb/provider"
)

// GetProvider is GetDocument as a provider.RequestResponse.
type GetProvider[T any] = provider.RequestResponse[GetIn, Result[GetOut[T], GetFailureCode]]

// UpdateProvider is UpdateDocument as a provider.RequestResponse.
type UpdateProvider[T any] = provider.RequestResponse[UpdateIn, Result[UpdateOut[T], UpdateFailureCode]]

// NewGetProvider exposes GetDocument for middleware composition.
// Classified failures are returned as values, so provider.WithRetry only
// sees transport errors.
func NewGetProvider[T any](c *Client) GetProvider[T] {
	return &getProvider[T]{client: c}
}

// NewUpdateProvider exposes UpdateDocument for middleware composition.
func NewUpdateProvider[T any](c *Client) UpdateProvider[T] {
	return &updateProvider[T]{client: c}
}

type getProvider[T any] struct {
	client *Client
}

func (p *getProvider[T]) Name() string { return componentName + "." + operationGet }

func (p *getProvider[T]) IsAvailable(_ context.Context) bool {
	return p.client != nil && p.client.sender != nil
}

func (p *getProvider[T]) Execute(ctx context.Context, in GetIn) (Result[GetOut[T], GetFailureCode], error) {
	return GetDocument[T](ctx, p.client, in)
}

type updateProvider[T any] struct {
	client *Client
}

func (p *updateProvider[T]) Name() string { return componentName + "." + operationUpdate }

func (p *updateProvider[T]) IsAvailable(_ context.Context) bool {
	return p.client != nil && p.client.sender != nil
}

func (p *updateProvider[T]) Execute(ctx context.Context, in UpdateIn) (Result[UpdateOut[T], UpdateFailureCode], error) {
	return UpdateDocument[T](ctx, p.client, in)
}

// GetThrottled reports whether r is a TooManyRequests failure. Pass it to
// provider.WithCircuitBreaker to open the circuit on sustained throttling.
func GetThrottled[T any](r Result[GetOut[T], GetFailureCode]) bool {
	f, failed := r.Failure()
	return failed && f.Code == GetTooManyRequests
}

// UpdateThrottled is GetThrottled for UpdateDocument results.
func UpdateThrottled[T any](r Result[UpdateOut[T], UpdateFailureCode]) bool {
	f, failed := r.Failure()
	return failed && f.Code == UpdateTooManyRequests
}
