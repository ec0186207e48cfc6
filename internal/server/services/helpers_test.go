package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/logging"
	"github.com/dmitrijs2005/soundhub/internal/server/auth"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/memory"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Secret123"

// longMultibytePassword is 43 runes but 83 bytes.
var longMultibytePassword = "Aa1" + strings.Repeat("é", 40)

func strp(s string) *string { return &s }

// countingHasher records how many verifications ran.
type countingHasher struct {
	auth.PasswordHasher
	verifies atomic.Int32
}

func (h *countingHasher) Verify(plain, hash string) bool {
	h.verifies.Add(1)
	return h.PasswordHasher.Verify(plain, hash)
}

// failingHasher cannot hash and remembers the last hash it verified against.
type failingHasher struct {
	auth.PasswordHasher
	lastHash string
}

func (h *failingHasher) Hash(string) (string, error) {
	return "", errors.New("entropy source unavailable")
}

func (h *failingHasher) Verify(plain, hash string) bool {
	h.lastHash = hash
	return h.PasswordHasher.Verify(plain, hash)
}

type fixture struct {
	store    *memory.Store
	rm       *memory.RepositoryManager
	hasher   *countingHasher
	users    *UserService
	subs     *SubscriptionService
	activity *ActivityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	rm := memory.NewRepositoryManager(store)
	h := &countingHasher{PasswordHasher: auth.NewBcryptHasher(bcrypt.MinCost)}
	return &fixture{
		store:    store,
		rm:       rm,
		hasher:   h,
		users:    NewUserService(store, rm, h, logging.Nop{}),
		subs:     NewSubscriptionService(store, rm, logging.Nop{}),
		activity: NewActivityService(store, rm, logging.Nop{}),
	}
}

func (f *fixture) register(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Email:    username + "@example.com",
		Username: username,
		Password: strongPassword,
		Role:     string(role),
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u
}

var errConnReset = errors.New("connection reset by peer")

// brokenUsers fails every lookup with a storage error.
type brokenUsers struct {
	users.Repository
}

func (brokenUsers) GetByID(context.Context, int64) (*models.User, error) {
	return nil, errConnReset
}

func (brokenUsers) GetByLogin(context.Context, string) (*models.User, error) {
	return nil, errConnReset
}

type brokenManager struct {
	repomanager.RepositoryManager
}

func (m brokenManager) Users(db dbx.DBTX) users.Repository {
	return brokenUsers{Repository: m.RepositoryManager.Users(db)}
}
