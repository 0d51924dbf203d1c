package config

import (
	"fmt"

	"github.com/kbukum/cosmosdb/cosmosdb"
	"github.com/kbukum/cosmosdb/httpclient"
	"github.com/kbukum/cosmosdb/observability"
	"github.com/kbukum/cosmosdb/provider"
)

// AppConfig is the configuration of a service that talks to one database.
//
//	name: orders-api
//	environment: production
//	cosmosdb:
//	  base_address: https://acct.documents.azure.com:443/
//	  database_id: app
//	  master_key: ${COSMOSDB_MASTER_KEY}
//	http:
//	  timeout: 10s
//	retry:
//	  max_attempts: 4
//	circuit_breaker:
//	  max_failures: 5
//	  open_timeout: 30s
type AppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	CosmosDB       cosmosdb.Option               `yaml:"cosmosdb" mapstructure:"cosmosdb"`
	HTTP           httpclient.Config             `yaml:"http" mapstructure:"http"`
	Retry          provider.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	CircuitBreaker provider.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Telemetry      TelemetryConfig               `yaml:"telemetry" mapstructure:"telemetry"`
}

// TelemetryConfig switches OpenTelemetry export on and configures it.
type TelemetryConfig struct {
	Enabled bool                       `yaml:"enabled" mapstructure:"enabled"`
	Tracer  observability.TracerConfig `yaml:"tracer" mapstructure:"tracer"`
	Meter   observability.MeterConfig  `yaml:"meter" mapstructure:"meter"`
}

// ApplyDefaults fills in defaults for every section. The service identity
// is copied into the telemetry resource.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.CosmosDB.ApplyDefaults()

	if c.HTTP.Name == "" {
		c.HTTP.Name = "cosmosdb"
	}
	c.HTTP.ApplyDefaults()

	tracer := observability.DefaultTracerConfig(c.Name)
	if c.Telemetry.Tracer.Endpoint == "" {
		c.Telemetry.Tracer.Endpoint = tracer.Endpoint
		c.Telemetry.Tracer.Insecure = tracer.Insecure
	}
	if c.Telemetry.Tracer.SampleRate == 0 {
		c.Telemetry.Tracer.SampleRate = tracer.SampleRate
	}
	meter := observability.DefaultMeterConfig(c.Name)
	if c.Telemetry.Meter.Endpoint == "" {
		c.Telemetry.Meter.Endpoint = meter.Endpoint
		c.Telemetry.Meter.Insecure = meter.Insecure
	}
	if c.Telemetry.Meter.Interval <= 0 {
		c.Telemetry.Meter.Interval = meter.Interval
	}

	c.Telemetry.Tracer.ServiceName, c.Telemetry.Meter.ServiceName = c.Name, c.Name
	c.Telemetry.Tracer.ServiceVersion, c.Telemetry.Meter.ServiceVersion = c.Version, c.Version
	c.Telemetry.Tracer.Environment, c.Telemetry.Meter.Environment = c.Environment, c.Environment
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.CosmosDB.Validate(); err != nil {
		return fmt.Errorf("config.cosmosdb: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("config.http: %w", err)
	}
	return nil
}
