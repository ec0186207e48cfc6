package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type sessionData struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SessionStrategy keeps identities server-side in Redis. The session id
// travels in an HttpOnly cookie.
type SessionStrategy struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	secure bool
}

var _ Strategy = (*SessionStrategy)(nil)

// NewSessionStrategy returns a strategy storing sessions for ttl. secure
// marks the cookie Secure (HTTPS only).
func NewSessionStrategy(rdb redis.Cmdable, ttl time.Duration, secure bool) *SessionStrategy {
	return &SessionStrategy{rdb: rdb, ttl: ttl, secure: secure}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

func sessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil || c.Value == "" {
		return "", common.ErrMissingCredentials
	}
	return c.Value, nil
}

func (s *SessionStrategy) Resolve(r *http.Request) (models.Identity, error) {
	sid, err := sessionID(r)
	if err != nil {
		return models.Identity{}, err
	}

	raw, err := s.rdb.Get(r.Context(), sessionKey(sid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Identity{}, common.ErrSessionNotFound
		}
		return models.Identity{}, fmt.Errorf("session lookup: %w", err)
	}

	var data sessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return models.Identity{}, common.ErrSessionNotFound
	}
	return models.Identity{UserID: data.UserID, Username: data.Username, Role: models.Role(data.Role)}, nil
}

func (s *SessionStrategy) store(ctx context.Context, sid string, id models.Identity) error {
	b, err := json.Marshal(sessionData{UserID: id.UserID, Username: id.Username, Role: string(id.Role)})
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, sessionKey(sid), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

func (s *SessionStrategy) Establish(ctx context.Context, w http.ResponseWriter, id models.Identity) (string, error) {
	sid := uuid.NewString()
	if err := s.store(ctx, sid, id); err != nil {
		return "", err
	}
	s.setCookie(w, sid, int(s.ttl.Seconds()))
	return "", nil
}

// Refresh rewrites the current session in place, or starts a new one when
// the request carries none.
func (s *SessionStrategy) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request, id models.Identity) (string, error) {
	sid, err := sessionID(r)
	if err != nil {
		return s.Establish(ctx, w, id)
	}
	if err := s.store(ctx, sid, id); err != nil {
		return "", err
	}
	return "", nil
}

func (s *SessionStrategy) Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sid, err := sessionID(r)
	if err != nil {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	s.setCookie(w, "", -1)
	return nil
}

func (s *SessionStrategy) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
