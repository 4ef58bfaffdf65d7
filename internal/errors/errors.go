// Package errors defines the service error taxonomy shared by every layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code identifies an error kind. Kinds propagate upward unchanged; handlers
// map them to HTTP statuses without inspecting messages.
type Code string

const (
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeConflict         Code = "CONFLICT"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL"
)

// ServiceError is the canonical error type crossing layer boundaries.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	// Details carries structured context. For validation failures it is the
	// field -> reasons map; it never contains store internals.
	Details map[string]any
	cause   error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails returns a copy of the error with an extra detail attached.
func (e *ServiceError) WithDetails(key string, value any) *ServiceError {
	clone := *e
	clone.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

// Unauthorized signals malformed or expired credentials. Absent credentials
// produce an anonymous principal instead, which the guard handles.
func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "authentication required"
	}
	return &ServiceError{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// Forbidden signals a failed authorization or self-deletion guard.
func Forbidden(message string) *ServiceError {
	if message == "" {
		message = "forbidden"
	}
	return &ServiceError{Code: CodeForbidden, Message: message, HTTPStatus: http.StatusForbidden}
}

// NotFound is deliberately uninformative: the caller cannot distinguish a
// missing record from one it may not see.
func NotFound(resource string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// Validation wraps a field -> reasons map produced by the validators.
func Validation(fields map[string][]string) *ServiceError {
	details := make(map[string]any, len(fields))
	for field, reasons := range fields {
		details[field] = reasons
	}
	return &ServiceError{
		Code:       CodeValidationFailed,
		Message:    "validation failed",
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// ValidationField is shorthand for a single-field validation failure.
func ValidationField(field, reason string) *ServiceError {
	return Validation(map[string][]string{field: {reason}})
}

// Conflict signals a referential-integrity or uniqueness violation
// surfaced by the store, e.g. protect-on-delete.
func Conflict(message string) *ServiceError {
	return &ServiceError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// RateLimited signals the caller exceeded its request budget.
func RateLimited() *ServiceError {
	return &ServiceError{
		Code:       CodeRateLimited,
		Message:    "rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Internal wraps an unexpected failure. The cause is logged server-side;
// callers only ever see the generic message.
func Internal(message string, cause error) *ServiceError {
	if message == "" {
		message = "internal error"
	}
	return &ServiceError{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, cause: cause}
}

// GetServiceError extracts a *ServiceError from an error chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	svcErr := GetServiceError(err)
	return svcErr != nil && svcErr.Code == code
}
