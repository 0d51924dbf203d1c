package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kbukum/cosmosdb/errors"
)

// Adapter is the default Sender. It owns one http.Client for its whole
// lifetime; the round tripper underneath is either injected or cloned once.
type Adapter struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
}

var _ Sender = (*Adapter)(nil)

// New creates a new HTTP adapter with the given configuration.
func New(cfg Config) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base *url.URL
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("httpclient: invalid base url: %w", err)
		}
		base = u
	}

	transport := cfg.Transport
	if transport == nil {
		tlsConfig, err := cfg.TLS.Build()
		if err != nil {
			return nil, fmt.Errorf("httpclient: %w", err)
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		if tlsConfig != nil {
			t.TLSClientConfig = tlsConfig
		}
		transport = t
	}
	if cfg.Tracing {
		transport = otelhttp.NewTransport(transport)
	}

	return &Adapter{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
	}, nil
}

// Do sends the request and returns the complete response for any status.
// Errors are reserved for transport-level outcomes and are *errors.AppError
// values: CANCELED, TIMEOUT, CONNECTION_FAILED or INVALID_INPUT.
func (c *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, fmt.Errorf("read response body: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Adapter) Unwrap() *http.Client {
	return c.httpClient
}

// buildRequest constructs an *http.Request from the adapter config and request.
func (c *Adapter) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target, err := c.resolve(req.Path)
	if err != nil {
		return nil, errors.InvalidInput("path", err.Error())
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, errors.InvalidInput("request", err.Error())
	}

	// Apply default headers
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}

	// Apply request-specific headers (override defaults)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if req.Signer != nil {
		if err := req.Signer.Sign(httpReq); err != nil {
			return nil, errors.Internal(fmt.Errorf("sign request: %w", err))
		}
	}

	return httpReq, nil
}

// resolve joins an already-escaped path onto the base URL without
// re-encoding it, so escaped separators inside segments survive.
func (c *Adapter) resolve(path string) (*url.URL, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || c.baseURL == nil {
		return url.Parse(path)
	}

	u := *c.baseURL
	basePath := strings.TrimRight(u.EscapedPath(), "/")
	rawPath := basePath + "/" + strings.TrimLeft(path, "/")

	unescaped, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, err
	}
	u.Path = unescaped
	u.RawPath = rawPath
	u.RawQuery = ""
	return &u, nil
}

// --- provider.Provider interface ---

// Name returns the adapter name (implements provider.Provider).
func (c *Adapter) Name() string {
	return c.config.Name
}

// IsAvailable reports whether the adapter can send requests (implements provider.Provider).
func (c *Adapter) IsAvailable(_ context.Context) bool {
	return c.httpClient != nil
}

// Execute sends an HTTP request (implements provider.RequestResponse).
func (c *Adapter) Execute(ctx context.Context, req Request) (*Response, error) {
	return c.Do(ctx, req)
}

// Close releases idle connections held by the adapter's transport (implements provider.Closeable).
func (c *Adapter) Close(_ context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}
