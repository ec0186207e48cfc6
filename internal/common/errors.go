// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is / errors.As to match them.
package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal           = errors.New("internal error")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid email/username or password")
	ErrIncorrectPassword  = errors.New("incorrect current password")
	ErrNoOp               = errors.New("no fields to update")

	// Access-control errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Credential errors. All of them are ErrUnauthenticated.
	ErrMissingCredentials    = fmt.Errorf("%w: missing credentials", ErrUnauthenticated)
	ErrTokenExpired          = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrTokenMalformed        = fmt.Errorf("%w: token malformed", ErrUnauthenticated)
	ErrTokenInvalidSignature = fmt.Errorf("%w: token signature invalid", ErrUnauthenticated)
	ErrSessionNotFound       = fmt.Errorf("%w: session not found", ErrUnauthenticated)

	// Subscription errors. Both are ErrNotFound.
	ErrPlanNotFound         = fmt.Errorf("%w: plan", ErrNotFound)
	ErrNoActiveSubscription = fmt.Errorf("%w: no active subscription", ErrNotFound)

	// Follow errors.
	ErrArtistNotFound   = fmt.Errorf("%w: artist", ErrNotFound)
	ErrNotFollowing     = fmt.Errorf("%w: not following this artist", ErrNotFound)
	ErrAlreadyFollowing = fmt.Errorf("%w: already following this artist", ErrConflict)
)

// ValidationError carries per-field messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from a single field message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError reports a uniqueness violation on a single field.
type ConflictError struct {
	Field string
}

// NewConflictError returns a ConflictError for field ("email", "username", "role").
func NewConflictError(field string) *ConflictError {
	return &ConflictError{Field: field}
}

func (e *ConflictError) Error() string {
	switch e.Field {
	case "email":
		return "Email already in use"
	case "username":
		return "Username already taken"
	case "":
		return ErrConflict.Error()
	default:
		return e.Field + " already exists"
	}
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// RoleConflictError reports an upgrade to the role the user already holds.
type RoleConflictError struct {
	Role string
}

func (e *RoleConflictError) Error() string {
	return "User already has " + e.Role + " role"
}

func (e *RoleConflictError) Is(target error) bool { return target == ErrConflict }
