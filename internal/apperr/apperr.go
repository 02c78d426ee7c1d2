// Package apperr defines the errors services return to the transport layer.
package apperr

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ValidationError maps field paths such as items.0.product to messages.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidation returns an empty ValidationError ready to collect fields.
func NewValidation() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// ErrOrNil returns e as an error, or nil when nothing failed.
func (e *ValidationError) ErrOrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Resource string
	ID       string
}

// NotFound builds a NotFoundError for resource id.
func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// AuthorizationError reports that the caller does not own the resource.
type AuthorizationError struct {
	Resource string
	ID       string
}

// Forbidden builds an AuthorizationError for resource id.
func Forbidden(resource, id string) *AuthorizationError {
	return &AuthorizationError{Resource: resource, ID: id}
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("caller does not own %s %q", e.Resource, e.ID)
}

// AuthenticationError reports bad credentials or an unusable bearer token.
type AuthenticationError struct {
	Reason string
}

// Unauthenticated builds an AuthenticationError.
func Unauthenticated(reason string) *AuthenticationError {
	return &AuthenticationError{Reason: reason}
}

func (e *AuthenticationError) Error() string {
	return "unauthenticated: " + e.Reason
}

// ConflictError reports a write refused because of related rows.
type ConflictError struct {
	Message string
}

// Conflict builds a ConflictError.
func Conflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StatusCode maps err to an HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		az *AuthorizationError
		an *AuthenticationError
		cf *ConflictError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &az), errors.As(err, &an):
		return http.StatusUnauthorized
	case errors.As(err, &cf):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
