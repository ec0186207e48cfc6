package memory

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/activity"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/users"
)

// RepositoryManager vends repositories backed by a shared Store.
type RepositoryManager struct {
	store *Store
}

var _ repomanager.RepositoryManager = (*RepositoryManager)(nil)

func NewRepositoryManager(store *Store) *RepositoryManager {
	return &RepositoryManager{store: store}
}

// RunMigrations is a no-op; the schema lives in Go.
func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *RepositoryManager) Users(db dbx.DBTX) users.Repository {
	return &userRepo{store: m.store, db: db}
}

func (m *RepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return &profileRepo{store: m.store, db: db}
}

func (m *RepositoryManager) Subscriptions(db dbx.DBTX) subscriptions.Repository {
	return &subscriptionRepo{store: m.store, db: db}
}

func (m *RepositoryManager) Activity(db dbx.DBTX) activity.Repository {
	return &activityRepo{store: m.store, db: db}
}
