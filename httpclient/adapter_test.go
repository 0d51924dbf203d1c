package httpclient

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/cosmosdb/security"
	"github.com/kbukum/cosmosdb/security/tlstest"
)

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	a, err := New(Config{
		BaseURL: baseURL,
		Headers: map[string]string{"Accept": "application/json", "X-Default": "base"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestAdapter_Do_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected default Accept header, got %q", got)
		}
		if got := r.Header.Get("X-Default"); got != "override" {
			t.Errorf("expected request header to override default, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"k":1}` {
			t.Errorf("unexpected body %q", body)
		}
		w.Header().Set("etag", `"abc"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	resp, err := a.Do(context.Background(), Request{
		Method:  http.MethodPatch,
		Path:    "/dbs/db/colls/c/docs/1",
		Headers: map[string]string{"X-Default": "override"},
		Body:    []byte(`{"k":1}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"id":"1"}` {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if resp.Header("ETag") != `"abc"` {
		t.Errorf("expected etag header, got %q", resp.Header("ETag"))
	}
}

func TestAdapter_Do_NonSuccessStatusIsNotAnError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusPreconditionFailed, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"code":"x"}`))
		}))

		resp, err := newTestAdapter(t, srv.URL).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
		srv.Close()
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if resp.StatusCode != status || resp.IsSuccess() {
			t.Errorf("expected status %d, got %d", status, resp.StatusCode)
		}
		if string(resp.Body) != `{"code":"x"}` {
			t.Errorf("status %d: body not preserved: %q", status, resp.Body)
		}
	}
}

func TestAdapter_Do_PreservesEscapedPath(t *testing.T) {
	var rawPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath.Store(r.URL.EscapedPath())
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL+"/base/")
	_, err := a.Do(context.Background(), Request{Method: http.MethodGet, Path: "dbs/my%20db/colls/a%2Fb/docs/x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rawPath.Load(); got != "/base/dbs/my%20db/colls/a%2Fb/docs/x" {
		t.Errorf("unexpected raw path %q", got)
	}
}

func TestAdapter_Do_InvokesSigner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "signed:GET" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	signer := SignerFunc(func(r *http.Request) error {
		r.Header.Set("Authorization", "signed:"+r.Method)
		return nil
	})

	resp, err := newTestAdapter(t, srv.URL).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", Signer: signer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected signed request to be accepted, got %d", resp.StatusCode)
	}
}

func TestAdapter_Do_SignerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	defer srv.Close()

	signer := SignerFunc(func(*http.Request) error { return stderrors.New("bad key") })
	_, err := newTestAdapter(t, srv.URL).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", Signer: signer})
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected signer error, got %v", err)
	}
	if hits.Load() != 0 {
		t.Error("request must not be sent when signing fails")
	}
}

func TestAdapter_Do_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := newTestAdapter(t, srv.URL).Do(ctx, Request{Method: http.MethodGet, Path: "/slow"})
	if !IsCanceled(err) {
		t.Fatalf("expected canceled error, got %v", err)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected errors.Is(err, context.Canceled), got %v", err)
	}
}

func TestAdapter_Do_DeadlineIsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestAdapter(t, srv.URL).Do(ctx, Request{Method: http.MethodGet, Path: "/slow"})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestAdapter_Do_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	_, err = newTestAdapter(t, "http://"+addr).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if !IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestAdapter_UsesInjectedTransport(t *testing.T) {
	var called atomic.Bool
	a, err := New(Config{
		BaseURL: "https://account.documents.example",
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			called.Store(true)
			return &http.Response{
				StatusCode: http.StatusTeapot,
				Header:     http.Header{},
				Body:       io.NopCloser(strings.NewReader("short and stout")),
				Request:    r,
			}, nil
		}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := a.Execute(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called.Load() {
		t.Fatal("expected injected transport to be used")
	}
	if resp.StatusCode != http.StatusTeapot || string(resp.Body) != "short and stout" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, resp.Body)
	}
	if a.Name() != "http" || !a.IsAvailable(context.Background()) {
		t.Error("expected default name and availability")
	}
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestAdapter_TracingWrapsTransport(t *testing.T) {
	a, err := New(Config{Tracing: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := a.Unwrap().Transport.(*http.Transport); ok {
		t.Error("expected tracing to wrap the base transport")
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s default timeout, got %v", cfg.Timeout)
	}
	if cfg.Name != "http" {
		t.Errorf("expected default name http, got %q", cfg.Name)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	bad := Config{Timeout: -1}
	if err := bad.Validate(); err == nil {
		t.Error("expected negative timeout to be rejected")
	}
}

func TestNew_InvalidBaseURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "://bad"}); err == nil {
		t.Error("expected invalid base url error")
	}
}

func TestAdapter_TLSCAFile(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "{}")
	}))
	defer srv.Close()

	untrusted, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := untrusted.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); !IsConnection(err) {
		t.Fatalf("expected self-signed server to be rejected as a connection failure, got %v", err)
	}

	trusted, err := New(Config{
		BaseURL: srv.URL,
		TLS:     &security.TLSConfig{CAFile: tlstest.WriteCertificate(t, srv.Certificate())},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := trusted.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		t.Fatalf("expected trusted CA to succeed, got %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestConfig_ValidateTLS(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"tls with injected transport", Config{Timeout: time.Second, Transport: http.DefaultTransport, TLS: &security.TLSConfig{SkipVerify: true}}},
		{"cert without key", Config{Timeout: time.Second, TLS: &security.TLSConfig{CertFile: "cert.pem"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if _, err := New(Config{TLS: &security.TLSConfig{CAFile: tlstest.WriteInvalidPEM(t)}}); err == nil {
		t.Error("expected New to fail on an unreadable CA bundle")
	}
}
