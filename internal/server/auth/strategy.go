package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

// IdentityResolver extracts the caller's identity from a request. A request
// without valid credentials yields an error matching common.ErrUnauthenticated.
type IdentityResolver interface {
	Resolve(r *http.Request) (models.Identity, error)
}

// Strategy is an IdentityResolver that also manages the credential's
// lifecycle. Exactly one strategy is active per deployment.
type Strategy interface {
	IdentityResolver
	// Establish creates a credential for id. The returned token is empty
	// when the credential travels out of band (e.g. a cookie).
	Establish(ctx context.Context, w http.ResponseWriter, id models.Identity) (string, error)
	// Refresh replaces the request's credential with one asserting id.
	Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request, id models.Identity) (string, error)
	// Revoke ends the request's credential where the strategy supports it.
	Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// BearerToken returns the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if header == "" {
		return "", common.ErrMissingCredentials
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != common.BearerScheme || strings.TrimSpace(parts[1]) == "" {
		return "", common.ErrTokenMalformed
	}
	return strings.TrimSpace(parts[1]), nil
}

// TokenStrategy authenticates with stateless bearer tokens. Logout is an
// acknowledgement only; tokens stay valid until they expire.
type TokenStrategy struct {
	tokens *TokenService
}

var _ Strategy = (*TokenStrategy)(nil)

func NewTokenStrategy(tokens *TokenService) *TokenStrategy {
	return &TokenStrategy{tokens: tokens}
}

func (s *TokenStrategy) Resolve(r *http.Request) (models.Identity, error) {
	token, err := BearerToken(r)
	if err != nil {
		return models.Identity{}, err
	}
	return s.tokens.Validate(token)
}

func (s *TokenStrategy) Establish(_ context.Context, _ http.ResponseWriter, id models.Identity) (string, error) {
	return s.tokens.IssueDefault(id)
}

func (s *TokenStrategy) Refresh(_ context.Context, _ http.ResponseWriter, _ *http.Request, id models.Identity) (string, error) {
	return s.tokens.IssueDefault(id)
}

func (s *TokenStrategy) Revoke(context.Context, http.ResponseWriter, *http.Request) error {
	return nil
}
