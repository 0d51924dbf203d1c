package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/cosmosdb/security"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP adapter.
type Config struct {
	// Name identifies the adapter in logs and provider registries.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the base URL prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds a whole request, including reading the body. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Tracing wraps the transport with OpenTelemetry instrumentation.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`

	// TLS configures the default transport. It cannot be combined with an
	// injected Transport.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Transport is the round tripper requests are sent through. Connection
	// pooling belongs to it. Nil uses a clone of http.DefaultTransport.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" {
		c.Name = "http"
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.Transport != nil && c.TLS.IsEnabled() {
		return fmt.Errorf("httpclient: tls settings cannot be applied to an injected transport")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}
