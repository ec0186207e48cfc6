package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Store, *RepositoryManager) {
	t.Helper()
	s := NewStore()
	return s, NewRepositoryManager(s)
}

func newUser(email, username string) *models.User {
	return &models.User{Email: email, Username: username, PasswordHash: "h", Role: models.RoleGuest}
}

func TestUsers_CreateAndLookup(t *testing.T) {
	s, m := setup(t)
	ctx := context.Background()
	repo := m.Users(s.Conn())

	u, err := repo.Create(ctx, newUser("a@x.com", "alice"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	byEmail, err := repo.GetByLogin(ctx, "a@x.com")
	require.NoError(t, err)
	byName, err := repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, byEmail.ID, byName.ID)

	_, err = repo.GetByLogin(ctx, "bob")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUsers_UniqueConstraints(t *testing.T) {
	s, m := setup(t)
	ctx := context.Background()
	repo := m.Users(s.Conn())

	_, err := repo.Create(ctx, newUser("a@x.com", "alice"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newUser("a@x.com", "alice2"))
	var ce *common.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "email", ce.Field)

	_, err = repo.Create(ctx, newUser("b@x.com", "alice"))
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "username", ce.Field)

	b, err := repo.Create(ctx, newUser("b@x.com", "bob"))
	require.NoError(t, err)

	taken, err := repo.EmailTaken(ctx, "b@x.com", b.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own email is not a collision")

	taken, err = repo.UsernameTaken(ctx, "alice", b.ID)
	require.NoError(t, err)
	assert.True(t, taken)

	name := "alice"
	_, err = repo.Update(ctx, b.ID, models.UserPatch{Username: &name})
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestUsers_ReturnsCopies(t *testing.T) {
	s, m := setup(t)
	ctx := context.Background()
	repo := m.Users(s.Conn())

	u, err := repo.Create(ctx, newUser("a@x.com", "alice"))
	require.NoError(t, err)
	u.Username = "mutated"

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s, m := setup(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := m.Users(tx).Create(ctx, newUser("a@x.com", "alice"))
		if err != nil {
			return err
		}
		if err := m.Profiles(tx).EnsureArtist(ctx, u.ID); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")

	_, err = m.Users(s.Conn()).GetByLogin(ctx, "alice")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = m.Profiles(s.Conn()).GetArtist(ctx, 1)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestInTx_RollsBackOnPanic(t *testing.T) {
	s, m := setup(t)
	ctx := context.Background()

	require.Panics(t, func() {
		_ = s.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			_, _ = m.Users(tx).Create(ctx, newUser("a@x.com", "alice"))
			panic("kaput")
		})
	})

	_, err := m.Users(s.Conn()).GetByLogin(ctx, "alice")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestInTx_CanceledContext(t *testing.T) {
	s, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestProfiles_EnsureIsIdempotent(t *testing.T) {
	s, m := setup(t)
	ctx := context.Background()

	u, err := m.Users(s.Conn()).Create(ctx, newUser("a@x.com", "alice"))
	require.NoError(t, err)

	p := m.Profiles(s.Conn())
	require.NoError(t, p.EnsureListener(ctx, u.ID))
	genre := "jazz"
	_, err = p.UpdateListener(ctx, u.ID, nil, &genre)
	require.NoError(t, err)
	require.NoError(t, p.EnsureListener(ctx, u.ID))

	l, err := p.GetListener(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, l.FavoriteGenre)
	assert.Equal(t, "jazz", *l.FavoriteGenre, "second ensure must not reset the record")

	require.NoError(t, p.EnsureArtist(ctx, u.ID))
	a, err := p.GetArtist(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerifiedStatusPending, a.VerifiedStatus)

	require.ErrorIs(t, p.EnsureArtist(ctx, 999), common.ErrNotFound)
}

func TestUsers_DeleteCascades(t *testing.T) {
	s, m := setup(t)
	ctx := context.Background()
	conn := s.Conn()

	u, err := m.Users(conn).Create(ctx, newUser("a@x.com", "alice"))
	require.NoError(t, err)
	require.NoError(t, m.Profiles(conn).EnsureListener(ctx, u.ID))
	_, err = m.Subscriptions(conn).Create(ctx, &models.Subscription{
		UserID: u.ID, PlanID: 1, StartDate: time.Now(), Status: models.SubscriptionActive,
	})
	require.NoError(t, err)

	require.NoError(t, m.Users(conn).Delete(ctx, u.ID))
	require.ErrorIs(t, m.Users(conn).Delete(ctx, u.ID), common.ErrNotFound)

	_, err = m.Profiles(conn).GetListener(ctx, u.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	hist, err := m.Subscriptions(conn).History(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestSubscriptions(t *testing.T) {
	s, m := setup(t)
	ctx := context.Background()
	conn := s.Conn()
	repo := m.Subscriptions(conn)

	plans, err := repo.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 4)
	assert.Equal(t, int64(1), plans[0].ID)
	assert.Nil(t, plans[3].DurationDays)

	u, err := m.Users(conn).Create(ctx, newUser("a@x.com", "alice"))
	require.NoError(t, err)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := repo.Create(ctx, &models.Subscription{UserID: u.ID, PlanID: 1, StartDate: t0, Status: models.SubscriptionActive})
	require.NoError(t, err)
	assert.Equal(t, "Listener Monthly", first.PlanName)
	require.NoError(t, repo.SetStatus(ctx, first.ID, models.SubscriptionCancelled))

	second, err := repo.Create(ctx, &models.Subscription{UserID: u.ID, PlanID: 3, StartDate: t0.Add(time.Hour), Status: models.SubscriptionActive})
	require.NoError(t, err)

	active, err := repo.FindActive(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, models.RoleArtist, active.PlanType)

	hist, err := repo.History(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, second.ID, hist[0].ID)

	_, err = repo.GetPlan(ctx, 42)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, repo.SetStatus(ctx, 42, models.SubscriptionExpired), common.ErrNotFound)
}

func TestUsers_ConcurrentCreateSameEmail(t *testing.T) {
	s, m := setup(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Users(s.Conn()).Create(ctx, newUser("same@x.com", "user"+string(rune('a'+i))))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, common.ErrConflict)
	}
	assert.Equal(t, 1, ok)
}
