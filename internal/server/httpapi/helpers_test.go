package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/logging"
	"github.com/dmitrijs2005/soundhub/internal/server/auth"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/memory"
	"github.com/dmitrijs2005/soundhub/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	t        *testing.T
	srv      *httptest.Server
	tokens   *auth.TokenService
	registry *prometheus.Registry
	store    *memory.Store
}

func newTestAPI(t *testing.T, strategy func(*auth.TokenService) auth.Strategy, health Pinger) *testAPI {
	t.Helper()

	store := memory.NewStore()
	rm := memory.NewRepositoryManager(store)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	if strategy == nil {
		strategy = func(ts *auth.TokenService) auth.Strategy { return auth.NewTokenStrategy(ts) }
	}
	if health == nil {
		health = store
	}

	registry := prometheus.NewRegistry()
	h := NewHandler(
		services.NewUserService(store, rm, hasher, logging.Nop{}),
		services.NewSubscriptionService(store, rm, logging.Nop{}),
		services.NewActivityService(store, rm, logging.Nop{}),
		strategy(tokens),
		health,
		logging.Nop{},
		NewMetrics(registry),
	)

	srv := httptest.NewServer(NewRouter(h, Options{Gatherer: registry, RequestTimeout: 5 * time.Second}))
	t.Cleanup(srv.Close)

	return &testAPI{t: t, srv: srv, tokens: tokens, registry: registry, store: store}
}

type response struct {
	Status int
	Header http.Header
	Body   map[string]any
	Raw    string
}

// do sends body as JSON; token, when non-empty, is sent as a bearer token.
func (a *testAPI) do(method, path, token string, body any, cookies ...*http.Cookie) response {
	a.t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, rdr)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(a.t, err)

	out := response{Status: resp.StatusCode, Header: resp.Header, Raw: buf.String()}
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(a.t, json.Unmarshal(buf.Bytes(), &out.Body), buf.String())
	}
	return out
}

// registerAndLogin registers username with role and returns its token.
func (a *testAPI) registerAndLogin(username, role string) string {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    username + "@example.com",
		"username": username,
		"password": "Passw0rd",
		"role":     role,
	})
	require.Equal(a.t, http.StatusCreated, resp.Status, resp.Raw)
	return resp.Body["token"].(string)
}

func userField(resp response, key string) any {
	u, _ := resp.Body["user"].(map[string]any)
	return u[key]
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("database is down") }
