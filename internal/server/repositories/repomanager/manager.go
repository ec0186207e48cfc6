package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/activity"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works on the pool and inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
	Activity(db dbx.DBTX) activity.Repository
}
