package httpclient

import "net/http"

// Signer authenticates an outbound request. It runs after every header and
// the body are in place, so it may sign over any of them.
type Signer interface {
	Sign(req *http.Request) error
}

// SignerFunc adapts a function to the Signer interface.
type SignerFunc func(req *http.Request) error

// Sign calls f(req).
func (f SignerFunc) Sign(req *http.Request) error {
	return f(req)
}
