package provider

import "context"

// Closeable is optionally implemented by providers that hold resources
// requiring explicit cleanup, such as pooled connections.
type Closeable interface {
	Close(ctx context.Context) error
}
