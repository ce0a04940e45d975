package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// Default detail messages used on the wire.
const (
	MsgUnauthenticated = "Authentication credentials were not provided."
	MsgForbidden       = "You do not have permission to perform this action."
	MsgNotFound        = "Not found."
)

// HTTPStatuser is implemented by errors that map to a specific HTTP response.
type HTTPStatuser interface {
	HTTPStatus() int
	Body() any
}

// ValidationError represents a validation failure. It carries either
// field-level messages (rendered as {"field": ["message", ...]}) or a single
// detail message (rendered as {"detail": "message"}).
type ValidationError struct {
	Fields map[string][]string
	Detail string
}

// NewFieldError creates a validation error for a single field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// NewDetailError creates a validation error with a bare detail message.
func NewDetailError(detail string) *ValidationError {
	return &ValidationError{Detail: detail}
}

// AddField appends a message for a field.
func (e *ValidationError) AddField(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("validation failed: %s", e.Detail)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, messages := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(messages, "; ")))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, ", "))
}

// HTTPStatus returns the HTTP status for this error.
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// Body returns the HTTP response body for this error.
func (e *ValidationError) Body() any {
	if e.Detail != "" {
		return map[string]string{"detail": e.Detail}
	}
	return e.Fields
}

// UnauthenticatedError is returned when no caller identity could be resolved.
type UnauthenticatedError struct {
	Message string
}

// NewUnauthenticatedError creates a new unauthenticated error.
func NewUnauthenticatedError() *UnauthenticatedError {
	return &UnauthenticatedError{Message: MsgUnauthenticated}
}

// Error implements the error interface.
func (e *UnauthenticatedError) Error() string { return e.Message }

// HTTPStatus returns the HTTP status for this error.
func (e *UnauthenticatedError) HTTPStatus() int { return http.StatusUnauthorized }

// Body returns the HTTP response body for this error.
func (e *UnauthenticatedError) Body() any { return map[string]string{"detail": e.Message} }

// ForbiddenError is returned when the caller is authenticated but lacks
// the privilege for the requested action.
type ForbiddenError struct {
	Message string
}

// NewForbiddenError creates a new forbidden error.
func NewForbiddenError() *ForbiddenError {
	return &ForbiddenError{Message: MsgForbidden}
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string { return e.Message }

// HTTPStatus returns the HTTP status for this error.
func (e *ForbiddenError) HTTPStatus() int { return http.StatusForbidden }

// Body returns the HTTP response body for this error.
func (e *ForbiddenError) Body() any { return map[string]string{"detail": e.Message} }

// NotFoundError represents a missing target resource.
type NotFoundError struct {
	Resource string
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the HTTP status for this error.
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// Body returns the HTTP response body for this error.
func (e *NotFoundError) Body() any { return map[string]string{"detail": MsgNotFound} }

// InternalError represents an unexpected failure with context.
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{Message: message, Err: err}
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *InternalError) Unwrap() error { return e.Err }

// HTTPStatus returns the HTTP status for this error.
func (e *InternalError) HTTPStatus() int { return http.StatusInternalServerError }

// Body returns the HTTP response body for this error.
func (e *InternalError) Body() any {
	return map[string]string{"detail": "An internal error occurred."}
}
