// Package httpapi exposes the account, role, activity and subscription
// operations as a JSON REST API on top of gorilla/mux.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/logging"
	"github.com/dmitrijs2005/soundhub/internal/server/auth"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/dmitrijs2005/soundhub/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	users    *services.UserService
	subs     *services.SubscriptionService
	activity *services.ActivityService
	strategy auth.Strategy
	health   Pinger
	logger   logging.Logger
	metrics  *Metrics
}

func NewHandler(us *services.UserService, ss *services.SubscriptionService, as *services.ActivityService, strategy auth.Strategy, health Pinger, logger logging.Logger, metrics *Metrics) *Handler {
	return &Handler{
		users:    us,
		subs:     ss,
		activity: as,
		strategy: strategy,
		health:   health,
		logger:   logger.With("module", "http_api"),
		metrics:  metrics,
	}
}

// Options tune the router.
type Options struct {
	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// RequestTimeout bounds each request context; zero means no limit.
	RequestTimeout time.Duration
}

// NewRouter builds the route table with its access policies.
func NewRouter(h *Handler, opts Options) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	r.Use(requestIDMiddleware, recoveryMiddleware(h.logger), loggingMiddleware(h.logger))
	if h.metrics != nil {
		r.Use(h.metrics.middleware)
	}
	r.Use(timeoutMiddleware(opts.RequestTimeout))

	open := auth.Anonymous(h.strategy)
	anyRole := auth.AnyRole(h.strategy)
	listener := auth.Roles(h.strategy, models.RoleListener)
	artist := auth.Roles(h.strategy, models.RoleArtist)

	a := r.PathPrefix("/api/auth").Subrouter()
	a.Handle("/register", h.guard(open, h.register)).Methods(http.MethodPost)
	a.Handle("/login", h.guard(open, h.login)).Methods(http.MethodPost)
	a.Handle("/logout", h.guard(anyRole, h.logout)).Methods(http.MethodPost)
	a.Handle("/me", h.guard(anyRole, h.me)).Methods(http.MethodGet)
	a.Handle("/me", h.guard(anyRole, h.updateMe)).Methods(http.MethodPut, http.MethodPatch)
	a.Handle("/me", h.guard(anyRole, h.deleteMe)).Methods(http.MethodDelete)
	a.Handle("/change-password", h.guard(anyRole, h.changePassword)).Methods(http.MethodPost)
	a.Handle("/session", h.guard(open, h.session)).Methods(http.MethodGet)

	u := r.PathPrefix("/api/users").Subrouter()
	u.Handle("/upgrade-role", h.guard(anyRole, h.upgradeRole)).Methods(http.MethodPost)
	u.Handle("/me/preferences", h.guard(listener, h.updatePreferences)).Methods(http.MethodPut, http.MethodPatch)
	u.Handle("/me/artist-profile", h.guard(artist, h.updateArtistProfile)).Methods(http.MethodPut, http.MethodPatch)
	u.Handle("/me/stats", h.guard(anyRole, h.stats)).Methods(http.MethodGet)
	u.Handle("/me/history", h.guard(listener, h.playHistory)).Methods(http.MethodGet)
	u.Handle("/me/history", h.guard(listener, h.recordPlay)).Methods(http.MethodPost)
	u.Handle("/me/following", h.guard(listener, h.following)).Methods(http.MethodGet)
	u.Handle("/me/following/{artist_id:[0-9]+}", h.guard(listener, h.follow)).Methods(http.MethodPost)
	u.Handle("/me/following/{artist_id:[0-9]+}", h.guard(listener, h.unfollow)).Methods(http.MethodDelete)
	u.Handle("/me/reactions", h.guard(listener, h.reactions)).Methods(http.MethodGet)
	u.Handle("/me/reactions", h.guard(listener, h.react)).Methods(http.MethodPost)

	s := r.PathPrefix("/api/subscriptions").Subrouter()
	s.Handle("/plans", h.guard(open, h.plans)).Methods(http.MethodGet)
	s.Handle("", h.guard(anyRole, h.purchase)).Methods(http.MethodPost)
	s.Handle("/me", h.guard(anyRole, h.currentSubscription)).Methods(http.MethodGet)
	s.Handle("/me/history", h.guard(anyRole, h.subscriptionHistory)).Methods(http.MethodGet)
	s.Handle("/me/cancel", h.guard(anyRole, h.cancelSubscription)).Methods(http.MethodPost)
	s.Handle("/me/status", h.guard(anyRole, h.subscriptionStatus)).Methods(http.MethodGet)

	r.HandleFunc("/health", h.healthz).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return r
}

// caller returns the identity attached by guard.
func caller(r *http.Request) models.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
