package httpclient

import (
	"context"
	"net/http"
)

// Sender sends one request and returns the response whatever its status.
// Implementations must honor ctx cancellation.
type Sender interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, req Request) (*Response, error)

// Do calls f(ctx, req).
func (f SenderFunc) Do(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method (GET, PATCH, ...).
	Method string
	// Path is appended to the adapter's BaseURL, or used as-is when it is an
	// absolute http(s) URL. It must already be percent-encoded; it is used
	// verbatim as the raw path.
	Path string
	// Headers are request-specific headers (merged with adapter defaults).
	Headers map[string]string
	// Body is the request body, sent as-is. Nil sends no body.
	Body []byte
	// Signer, when set, authenticates the fully built request right before sending.
	Signer Signer
}

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers http.Header
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Header returns the first value of the named response header.
func (r *Response) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}
