package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = stderrors.New("not found")
	ErrForbidden          = stderrors.New("forbidden")
	ErrValidation         = stderrors.New("validation failed")
	ErrInvalidTransition  = stderrors.New("invalid status transition")
	ErrCheckInWindow      = stderrors.New("outside check-in window")
	ErrRoomUnavailable    = stderrors.New("room is not available for booking")
	ErrInvalidCredentials = stderrors.New("invalid credentials")
	ErrEmailTaken         = stderrors.New("email already registered")
)

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a single-field validation error.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
