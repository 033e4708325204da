// Package errors provides the structured error type shared by the service
// and API layers of PromptDeck.
//
// Repositories return the sentinels below (wrapped with context); services
// translate them into *AppError values carrying a client-facing code.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Store-level sentinels, matched with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrHasDependents = errors.New("resource still has dependents")
)

// AppError is a structured application error with HTTP status and error code.
type AppError struct {
	// Code is a machine-readable error code (e.g., "TEAM_NOT_FOUND").
	Code string `json:"code"`

	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`

	// Params carries structured context for clients.
	Params map[string]interface{} `json:"params,omitempty"`

	// FieldErrors lists request fields that failed validation.
	FieldErrors []FieldError `json:"field_errors,omitempty"`

	// Err is the store or driver error behind a 500; never rendered.
	Err error `json:"-"`
}

// FieldError describes a field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// Wrap attaches a client-facing code and status to err.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// WithParams sets Params; nil or empty params leave e unchanged.
func (e *AppError) WithParams(params map[string]interface{}) *AppError {
	if e != nil && len(params) > 0 {
		e.Params = params
	}
	return e
}

// WithFieldErrors sets FieldErrors; an empty list leaves e unchanged.
func (e *AppError) WithFieldErrors(fieldErrors []FieldError) *AppError {
	if e != nil && len(fieldErrors) > 0 {
		e.FieldErrors = fieldErrors
	}
	return e
}

func withStatus(status int) func(code, message string) *AppError {
	return func(code, message string) *AppError {
		return &AppError{Code: code, Message: message, HTTPStatus: status}
	}
}

// Status-specific constructors.
var (
	NotFound     = withStatus(http.StatusNotFound)
	BadRequest   = withStatus(http.StatusBadRequest)
	Unauthorized = withStatus(http.StatusUnauthorized)
	Forbidden    = withStatus(http.StatusForbidden)
)

// IsAppError reports whether err wraps an *AppError and returns it.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
