// Package validation checks configuration structs against their
// `validate` struct tags using go-playground/validator.
//
//	type Config struct {
//	    Domain string `mapstructure:"domain" validate:"required"`
//	}
//	if err := validation.Struct(cfg); err != nil { ... }
//
// Field names in messages follow the `mapstructure` tag so they match the
// keys users write in config files.
package validation
