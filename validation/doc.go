// Package validation validates configuration structs through struct tags
// using the go-playground validator.
//
// Field names in error messages come from the mapstructure tag, so they
// match the keys a user writes in config files and environment variables.
//
//	type Option struct {
//	    BaseAddress string `mapstructure:"base_address" validate:"required,url"`
//	}
//	err := validation.Validate(opt)
package validation
