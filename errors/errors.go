// errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a structured application error with code, message, and HTTP status.
type Error struct {
	// Code is a machine-readable error code (e.g., "not_found", "internal_error")
	Code string `json:"error"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Status is the HTTP status code (not included in JSON)
	Status int `json:"-"`

	// Details contains additional error context (optional)
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error (not included in JSON)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// HTTPStatus returns the HTTP status code for the error.
func (e *Error) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// New creates a new Error with code, message, and HTTP status.
func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(err error, code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status, Err: err}
}

// From extracts an *Error from err if possible, or wraps it as an internal error.
// The wrapped error's text is never exposed to clients.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return Wrap(err, CodeInternalError, "an internal error occurred", http.StatusInternalServerError)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Common error codes.
const (
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeTooLarge         = "request_too_large"
	CodeUnsupportedMedia = "unsupported_media_type"
	CodeInternalError    = "internal_error"
)

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message, http.StatusNotFound)
}

// MethodNotAllowed creates a 405 Method Not Allowed error.
func MethodNotAllowed(message string) *Error {
	return New(CodeMethodNotAllowed, message, http.StatusMethodNotAllowed)
}

// TooLarge creates a 413 Request Entity Too Large error.
func TooLarge(message string) *Error {
	return New(CodeTooLarge, message, http.StatusRequestEntityTooLarge)
}

// UnsupportedMedia creates a 415 Unsupported Media Type error.
func UnsupportedMedia(message string) *Error {
	return New(CodeUnsupportedMedia, message, http.StatusUnsupportedMediaType)
}

// Internal creates a 500 Internal Server Error.
func Internal(message string) *Error {
	return New(CodeInternalError, message, http.StatusInternalServerError)
}
