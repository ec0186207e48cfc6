// Package auth holds the security primitives of the server: password
// hashing, signed identity tokens, the strategies that turn a request into
// an identity, and the access policies built on top of them.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload. The integer user id travels as "sub" and
// shadows the string subject of the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"sub"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenService issues and validates HS256 identity tokens. It holds no
// mutable state after construction and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, now: time.Now}
}

// TTL is the lifetime used by IssueDefault.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for id that expires ttl from now.
func (s *TokenService) Issue(id models.Identity, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   id.UserID,
		Username: id.Username,
		Role:     string(id.Role),
	})

	return token.SignedString(s.secret)
}

// IssueDefault signs a token with the configured lifetime.
func (s *TokenService) IssueDefault(id models.Identity) (string, error) {
	return s.Issue(id, s.ttl)
}

// Validate checks signature and expiry and returns the asserted identity.
// Errors are common.ErrTokenExpired, common.ErrTokenMalformed or
// common.ErrTokenInvalidSignature.
func (s *TokenService) Validate(tokenString string) (models.Identity, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return models.Identity{}, common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return models.Identity{}, common.ErrTokenMalformed
		}
		return models.Identity{}, common.ErrTokenInvalidSignature
	}

	id := models.Identity{UserID: claims.UserID, Username: claims.Username, Role: models.Role(claims.Role)}
	if id.UserID <= 0 || id.Username == "" || !id.Role.Valid() {
		return models.Identity{}, common.ErrTokenMalformed
	}
	return id, nil
}
