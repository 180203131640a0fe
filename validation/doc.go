// Package validation checks configuration structs and request input.
//
// Struct tag validation uses go-playground/validator and is applied to the
// service configuration. The programmatic Validator collects field errors
// for hand-checked input such as multipart uploads.
//
//	v := validation.New()
//	v.Required("file", header.Filename)
//	if err := v.Validate(); err != nil { ... }
package validation
