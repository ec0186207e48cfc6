package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

// AccessPolicy decides whether a request may proceed. A nil identity with a
// nil error means an anonymous caller was admitted.
type AccessPolicy interface {
	Check(r *http.Request) (*models.Identity, error)
}

// PolicyFunc adapts a function to AccessPolicy.
type PolicyFunc func(r *http.Request) (*models.Identity, error)

func (f PolicyFunc) Check(r *http.Request) (*models.Identity, error) { return f(r) }

// ForbiddenError names the roles a resource requires.
type ForbiddenError struct {
	Required []models.Role
}

func (e *ForbiddenError) Error() string {
	names := make([]string, len(e.Required))
	for i, r := range e.Required {
		names[i] = string(r)
	}
	return "This resource requires one of the following roles: " + strings.Join(names, ", ")
}

func (e *ForbiddenError) Is(target error) bool { return target == common.ErrForbidden }

// Anonymous admits everyone and attaches the identity when the request
// happens to carry valid credentials.
func Anonymous(res IdentityResolver) AccessPolicy {
	return PolicyFunc(func(r *http.Request) (*models.Identity, error) {
		id, err := res.Resolve(r)
		if err != nil {
			if errors.Is(err, common.ErrUnauthenticated) {
				return nil, nil
			}
			return nil, err
		}
		return &id, nil
	})
}

// AnyRole admits any authenticated caller.
func AnyRole(res IdentityResolver) AccessPolicy {
	return PolicyFunc(func(r *http.Request) (*models.Identity, error) {
		id, err := res.Resolve(r)
		if err != nil {
			return nil, err
		}
		return &id, nil
	})
}

// Roles admits authenticated callers holding one of roles.
func Roles(res IdentityResolver, roles ...models.Role) AccessPolicy {
	base := AnyRole(res)
	return PolicyFunc(func(r *http.Request) (*models.Identity, error) {
		id, err := base.Check(r)
		if err != nil {
			return nil, err
		}
		if !id.HasRole(roles...) {
			return nil, &ForbiddenError{Required: roles}
		}
		return id, nil
	})
}
