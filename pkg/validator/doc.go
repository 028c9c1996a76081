// Package validator checks request input with rule strings such as
// "required|email|max:50" or with struct tags, on top of
// go-playground/validator.
//
// Failures are collected per field into [Errors], which serializes to JSON as
// {"field": ["message", ...]} and satisfies errors.Is(err, ErrValidation).
package validator
