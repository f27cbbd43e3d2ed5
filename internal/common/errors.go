// Package common defines shared constants and sentinel errors used across
// the auth service layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal           = errors.New("internal error")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("email or password is incorrect")

	// Auth errors (missing, malformed, expired or revoked token).
	ErrUnauthenticated = errors.New("unauthenticated")

	// Role gate errors.
	ErrForbidden = errors.New("insufficient permissions")

	// Key material errors. Surfaced as a 500: the signing key is loaded
	// lazily to tolerate environments where the secret is injected after
	// process start.
	ErrKeyUnavailable = errors.New("signing key unavailable")

	// Validation errors without field context.
	ErrValidation = errors.New("validation error")
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field string `json:"path"`
	Msg   string `json:"msg"`
}

// FieldErrors is a validation failure carrying per-field details.
// It matches ErrValidation under errors.Is.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, f := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Msg))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}
