package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.NotContains(t, hash, "Passw0rd")

	assert.True(t, h.Verify("Passw0rd", hash))
	assert.False(t, h.Verify("passw0rd", hash))
	assert.False(t, h.Verify("Passw0rd", "not-a-hash"))
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	b, err := h.Hash("Passw0rd")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBcryptHasher_TooLong(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("A1a", 30))
	assert.Error(t, err)
}
