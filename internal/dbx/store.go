package dbx

import (
	"context"
	"database/sql"
)

// Store is the unit-of-work boundary used by services. Conn returns a handle
// for single-statement operations; InTx runs fn in one transaction that is
// released on every exit path.
type Store interface {
	Conn() DBTX
	InTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
	Ping(ctx context.Context) error
}

// SQLStore is a Store over a pooled *sql.DB.
type SQLStore struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewSQLStore wraps db. opts may be nil for the driver default isolation.
func NewSQLStore(db *sql.DB, opts *sql.TxOptions) *SQLStore {
	return &SQLStore{db: db, opts: opts}
}

func (s *SQLStore) Conn() DBTX { return s.db }

func (s *SQLStore) InTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, s.db, s.opts, fn)
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// DB exposes the underlying pool, e.g. for migrations.
func (s *SQLStore) DB() *sql.DB { return s.db }
