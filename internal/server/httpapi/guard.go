package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/server/auth"
)

// guard runs policy before next. An admitted identity is attached to the
// request context; rejections never reach next.
func (h *Handler) guard(policy auth.AccessPolicy, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := policy.Check(r)
		if err != nil {
			h.reject(w, r, err)
			return
		}
		if id != nil {
			r = r.WithContext(auth.WithIdentity(r.Context(), *id))
		}
		next(w, r)
	})
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		reason string
		body   errorBody
		fe     *auth.ForbiddenError
	)

	switch {
	case errors.Is(err, common.ErrMissingCredentials):
		status, reason = http.StatusUnauthorized, "missing"
		body = errorBody{Error: "Authentication required", Message: "Please provide a valid authentication token."}
	case errors.Is(err, common.ErrTokenExpired):
		status, reason = http.StatusUnauthorized, "expired"
		body = errorBody{Error: "Token expired", Message: "Your authentication token has expired. Please login again."}
	case errors.Is(err, common.ErrSessionNotFound):
		status, reason = http.StatusUnauthorized, "session"
		body = errorBody{Error: "Invalid session", Message: "Your session has expired or was revoked. Please login again."}
	case errors.Is(err, common.ErrUnauthenticated):
		status, reason = http.StatusUnauthorized, "invalid"
		body = errorBody{Error: "Invalid token", Message: "The provided authentication token is invalid."}
	case errors.As(err, &fe):
		status, reason = http.StatusForbidden, "forbidden"
		body = errorBody{Error: "Forbidden", Message: fe.Error()}
	default:
		h.writeError(w, r, err, "")
		return
	}

	if h.metrics != nil {
		h.metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	}
	writeJSON(w, status, body)
}
