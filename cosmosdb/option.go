package cosmosdb

import (
	"github.com/kbukum/cosmosdb/validation"
)

// DefaultAPIVersion is the x-ms-version sent when Option.APIVersion is empty.
const DefaultAPIVersion = "2018-12-31"

// Option configures one adapter instance. It is constant for the lifetime
// of a Client and is validated once, by New.
type Option struct {
	// BaseAddress is the account endpoint, e.g. https://acct.documents.azure.com:443/.
	BaseAddress string `yaml:"base_address" mapstructure:"base_address" validate:"required,url"`
	// DatabaseID names the database every request is scoped to.
	DatabaseID string `yaml:"database_id" mapstructure:"database_id" validate:"required"`
	// MasterKey is the base64 account key used to sign requests.
	MasterKey string `yaml:"master_key" mapstructure:"master_key" validate:"required,base64"`
	// APIVersion is the REST API version (x-ms-version).
	APIVersion string `yaml:"api_version" mapstructure:"api_version" validate:"omitempty,datetime=2006-01-02"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (o *Option) ApplyDefaults() {
	if o.APIVersion == "" {
		o.APIVersion = DefaultAPIVersion
	}
}

// Validate checks the option against its struct tags.
func (o *Option) Validate() error {
	return validation.Validate(o)
}
