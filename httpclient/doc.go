// Package httpclient provides the HTTP-sending capability used by the
// document adapter.
//
// Sender is the abstraction the adapter depends on. Adapter is the default
// implementation: it wraps a single http.Client built once from Config,
// around a caller-supplied http.RoundTripper when one is given, and
// returns the response for every HTTP status. Interpreting the status is
// left to the caller; only transport-level outcomes (connection failure,
// timeout, cancellation) are reported as errors.
//
// Config.TLS configures the default transport, for example to trust a local
// emulator's certificate. An injected Transport carries its own TLS settings.
//
// # Basic Usage
//
//	adapter, err := httpclient.New(httpclient.Config{
//	    BaseURL:   "https://acct.documents.azure.com:443/",
//	    Timeout:   30 * time.Second,
//	    Transport: pooledTransport,
//	})
//
//	resp, err := adapter.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "dbs/app/colls/orders/docs/42",
//	})
package httpclient
