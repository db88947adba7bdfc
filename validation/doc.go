// Package validation provides input validation for API handlers and
// registration paths.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection.
//
// # Struct Tag Validation
//
//	type recordTransactionBody struct {
//	    Status string `json:"status" validate:"required,oneof=success fail"`
//	}
//	err := validation.Validate(body)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.ComponentID("component_id", id)
//	err := v.Validate()
package validation
