package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionStrategy(t *testing.T) (*SessionStrategy, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewSessionStrategy(rdb, time.Hour, false), mr
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == common.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", common.SessionCookieName)
	return nil
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestSessionStrategy_Lifecycle(t *testing.T) {
	s, mr := newSessionStrategy(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	tok, err := s.Establish(ctx, w, alice)
	require.NoError(t, err)
	assert.Empty(t, tok)

	c := sessionCookie(t, w)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, mr.Exists("session:"+c.Value))
	assert.Equal(t, time.Hour, mr.TTL("session:"+c.Value))

	id, err := s.Resolve(requestWith(c))
	require.NoError(t, err)
	assert.Equal(t, alice, id)

	w = httptest.NewRecorder()
	require.NoError(t, s.Revoke(ctx, w, requestWith(c)))
	assert.False(t, mr.Exists("session:"+c.Value))
	assert.Equal(t, -1, sessionCookie(t, w).MaxAge)

	_, err = s.Resolve(requestWith(c))
	require.ErrorIs(t, err, common.ErrSessionNotFound)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestSessionStrategy_Refresh(t *testing.T) {
	s, _ := newSessionStrategy(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	_, err := s.Establish(ctx, w, alice)
	require.NoError(t, err)
	c := sessionCookie(t, w)

	upgraded := alice
	upgraded.Role = models.RoleArtist
	w = httptest.NewRecorder()
	_, err = s.Refresh(ctx, w, requestWith(c), upgraded)
	require.NoError(t, err)
	assert.Empty(t, w.Result().Cookies(), "existing session is rewritten in place")

	id, err := s.Resolve(requestWith(c))
	require.NoError(t, err)
	assert.Equal(t, models.RoleArtist, id.Role)

	w = httptest.NewRecorder()
	_, err = s.Refresh(ctx, w, requestWith(nil), upgraded)
	require.NoError(t, err)
	assert.NotEqual(t, c.Value, sessionCookie(t, w).Value)
}

func TestSessionStrategy_Missing(t *testing.T) {
	s, _ := newSessionStrategy(t)

	_, err := s.Resolve(requestWith(nil))
	require.ErrorIs(t, err, common.ErrMissingCredentials)

	require.NoError(t, s.Revoke(context.Background(), httptest.NewRecorder(), requestWith(nil)))
}

func TestSessionStrategy_Expired(t *testing.T) {
	s, mr := newSessionStrategy(t)

	w := httptest.NewRecorder()
	_, err := s.Establish(context.Background(), w, alice)
	require.NoError(t, err)
	c := sessionCookie(t, w)

	mr.FastForward(2 * time.Hour)

	_, err = s.Resolve(requestWith(c))
	require.ErrorIs(t, err, common.ErrSessionNotFound)
}

func TestSessionStrategy_BackendDown(t *testing.T) {
	s, mr := newSessionStrategy(t)

	w := httptest.NewRecorder()
	_, err := s.Establish(context.Background(), w, alice)
	require.NoError(t, err)
	c := sessionCookie(t, w)

	mr.Close()

	_, err = s.Resolve(requestWith(c))
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrUnauthenticated)
}
