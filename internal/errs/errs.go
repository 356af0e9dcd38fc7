// Package errs defines the typed errors request handlers report and the
// HTTP status and code each one maps to.
package errs

import (
	"errors"
	"net/http"
)

const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_SERVER_ERROR"
)

// HTTPError is implemented by errors that know how they should be rendered.
type HTTPError interface {
	error
	StatusCode() int
	ErrorCode() string
}

// FieldError describes a single invalid or missing request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Message string
}

// NewNotFoundError creates a NotFoundError with the given message.
func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func (e *NotFoundError) Error() string     { return e.Message }
func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *NotFoundError) ErrorCode() string { return CodeNotFound }

// ValidationError reports a malformed request or missing required fields.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

// NewValidationError creates a ValidationError with optional field details.
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string     { return e.Message }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *ValidationError) ErrorCode() string { return CodeValidation }

// AsHTTPError unwraps err into an HTTPError if the chain contains one.
func AsHTTPError(err error) (HTTPError, bool) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
