// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

/*
Package apperr defines the centralized error handling framework for Kadrio.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Security taxonomy: Credential failures are deliberately indistinguishable,
    lockouts are explicit, token failures collapse to a single outward signal.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// AppError is the canonical error type for the Kadrio API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "ACCOUNT_LOCKED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// Meta holds machine-readable extras (e.g. "assigned_role", "locked_until").
	Meta map[string]string `json:"meta,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCode overrides the machine-readable code and returns the same error.
//
// Example:
//
//	apperr.Forbidden("No access").WithCode("NO_SERVICE_ACCESS")
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithMeta attaches a machine-readable key/value pair and returns the same error.
func (e *AppError) WithMeta(key, value string) *AppError {
	if e.Meta == nil {
		e.Meta = make(map[string]string)
	}
	e.Meta[key] = value
	return e
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Staff member") // Returns "Staff member not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidCredentials creates the single 401 [AppError] used for every
// authentication failure.
//
// # Security
//
// The message is identical whether the login code was unknown or the password
// was wrong, so the endpoint cannot be used to enumerate valid login codes.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid login code or password",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Locked creates a 423 [AppError] for a credential inside its lockout window.
// The unlock time is surfaced so the client can tell the user when to retry.
func Locked(until time.Time) *AppError {
	return &AppError{
		Code:       "ACCOUNT_LOCKED",
		Message:    fmt.Sprintf("Too many failed attempts. Try again after %s.", until.UTC().Format(time.RFC3339)),
		HTTPStatus: http.StatusLocked,
		Meta:       map[string]string{"locked_until": until.UTC().Format(time.RFC3339)},
	}
}

// TokenInvalid creates the single 401 [AppError] used for every token
// rejection (bad signature, wrong type, expired, revoked, blacklisted).
//
// # Security
//
// The outward signal never says why the token was rejected, which prevents
// oracle attacks against refresh-token guessing. Internal logs may distinguish.
func TokenInvalid() *AppError {
	return &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "Token is invalid or expired. Please log in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ConcurrencyConflict creates a 409 [AppError] for a detected write race
// (sequence allocation or primary-assignment flip) that survived the internal retry.
func ConcurrencyConflict(msg string) *AppError {
	return &AppError{
		Code:       "CONCURRENCY_CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ConfigurationError creates a 500 [AppError] for an unsatisfiable
// organizational configuration (e.g. an assignment with no resolvable unit
// prefix). The triggering write must fail rather than produce malformed data.
func ConfigurationError(msg string) *AppError {
	return &AppError{
		Code:       "CONFIGURATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err is an [*AppError] carrying the given machine code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
