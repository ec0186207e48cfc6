package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		err    error
	}{
		{name: "missing", header: "", err: common.ErrMissingCredentials},
		{name: "wrong scheme", header: "Basic abc", err: common.ErrTokenMalformed},
		{name: "no token", header: "Bearer ", err: common.ErrTokenMalformed},
		{name: "scheme only", header: "Bearer", err: common.ErrTokenMalformed},
		{name: "ok", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := BearerToken(r)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenStrategy(t *testing.T) {
	s := NewTokenStrategy(NewTokenService([]byte("secret"), time.Hour))
	ctx := context.Background()
	w := httptest.NewRecorder()

	tok, err := s.Establish(ctx, w, alice)
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Empty(t, w.Header().Values("Set-Cookie"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	id, err := s.Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, alice, id)

	require.NoError(t, s.Revoke(ctx, w, r))
	_, err = s.Resolve(r)
	assert.NoError(t, err, "stateless tokens survive logout")

	refreshed, err := s.Refresh(ctx, w, r, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed)
}
