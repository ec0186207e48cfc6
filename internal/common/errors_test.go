package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialErrors_AreUnauthenticated(t *testing.T) {
	for _, err := range []error{ErrMissingCredentials, ErrTokenExpired, ErrTokenMalformed, ErrTokenInvalidSignature, ErrSessionNotFound} {
		assert.ErrorIs(t, err, ErrUnauthenticated, err.Error())
	}
	assert.NotErrorIs(t, ErrTokenExpired, ErrTokenInvalidSignature)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"password": "too short", "email": "bad"}}

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: email: bad; password: too short", err.Error())

	wrapped := fmt.Errorf("register: %w", err)
	var ve *ValidationError
	require.ErrorAs(t, wrapped, &ve)
	assert.Equal(t, "too short", ve.Fields["password"])
}

func TestConflictError(t *testing.T) {
	tests := []struct {
		field string
		msg   string
	}{
		{"email", "Email already in use"},
		{"username", "Username already taken"},
		{"", "conflict"},
		{"plan", "plan already exists"},
	}
	for _, tt := range tests {
		err := NewConflictError(tt.field)
		assert.Equal(t, tt.msg, err.Error())
		assert.True(t, errors.Is(err, ErrConflict))
	}

	rc := &RoleConflictError{Role: "Listener"}
	assert.ErrorIs(t, rc, ErrConflict)
	assert.Equal(t, "User already has Listener role", rc.Error())
}

func TestMakeRandHexString(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	_, err = hex.DecodeString(s)
	assert.NoError(t, err)

	empty, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFollowErrors(t *testing.T) {
	assert.ErrorIs(t, ErrArtistNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrNotFollowing, ErrNotFound)
	assert.ErrorIs(t, ErrAlreadyFollowing, ErrConflict)
	assert.NotErrorIs(t, ErrArtistNotFound, ErrNotFollowing)
}
