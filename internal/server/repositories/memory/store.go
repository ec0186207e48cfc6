// Package memory is an in-process backend for the repositories. It keeps the
// same uniqueness and cascade rules as the SQL schema and is meant for local
// runs and tests.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

var errUnsupported = errors.New("memory: raw SQL is not supported")

// handle is the DBTX handed to repositories. It only marks whether the
// caller already holds the store lock; raw SQL calls fail.
type handle struct {
	inTx bool
}

func (handle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errUnsupported
}

func (handle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errUnsupported
}

func (handle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

type state struct {
	users     map[int64]*models.User
	listeners map[int64]*models.ListenerProfile // keyed by user id
	artists   map[int64]*models.ArtistProfile   // keyed by user id
	plans     map[int64]*models.Plan
	subs      map[int64]*models.Subscription
	follows   map[followKey]time.Time
	plays     map[int64]*models.Play
	reactions map[int64]*models.Reaction

	nextUser, nextListener, nextArtist, nextSub, nextPlay, nextReaction int64
}

// followKey is the (listener id, artist id) primary key of a follow.
type followKey struct {
	listenerID, artistID int64
}

func newState() *state {
	st := &state{
		users:     map[int64]*models.User{},
		listeners: map[int64]*models.ListenerProfile{},
		artists:   map[int64]*models.ArtistProfile{},
		plans:     map[int64]*models.Plan{},
		subs:      map[int64]*models.Subscription{},
		follows:   map[followKey]time.Time{},
		plays:     map[int64]*models.Play{},
		reactions: map[int64]*models.Reaction{},
	}
	for i, p := range defaultPlans() {
		p.ID = int64(i + 1)
		st.plans[p.ID] = p
	}
	return st
}

func days(n int) *int { return &n }

// defaultPlans mirrors the rows seeded by the SQL migrations.
func defaultPlans() []*models.Plan {
	return []*models.Plan{
		{Name: "Listener Monthly", Type: models.RoleListener, Price: 4.99, DurationDays: days(30)},
		{Name: "Listener Yearly", Type: models.RoleListener, Price: 49.99, DurationDays: days(365)},
		{Name: "Artist Monthly", Type: models.RoleArtist, Price: 9.99, DurationDays: days(30)},
		{Name: "Artist Lifetime", Type: models.RoleArtist, Price: 199.00},
	}
}

func (st *state) clone() *state {
	c := &state{
		users:        make(map[int64]*models.User, len(st.users)),
		listeners:    make(map[int64]*models.ListenerProfile, len(st.listeners)),
		artists:      make(map[int64]*models.ArtistProfile, len(st.artists)),
		plans:        make(map[int64]*models.Plan, len(st.plans)),
		subs:         make(map[int64]*models.Subscription, len(st.subs)),
		follows:      make(map[followKey]time.Time, len(st.follows)),
		plays:        make(map[int64]*models.Play, len(st.plays)),
		reactions:    make(map[int64]*models.Reaction, len(st.reactions)),
		nextUser:     st.nextUser,
		nextListener: st.nextListener,
		nextArtist:   st.nextArtist,
		nextSub:      st.nextSub,
		nextPlay:     st.nextPlay,
		nextReaction: st.nextReaction,
	}
	for k, v := range st.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range st.listeners {
		c.listeners[k] = copyListener(v)
	}
	for k, v := range st.artists {
		c.artists[k] = copyArtist(v)
	}
	for k, v := range st.plans {
		p := *v
		c.plans[k] = &p
	}
	for k, v := range st.subs {
		c.subs[k] = copySubscription(v)
	}
	for k, v := range st.follows {
		c.follows[k] = v
	}
	for k, v := range st.plays {
		p := *v
		c.plays[k] = &p
	}
	for k, v := range st.reactions {
		re := *v
		c.reactions[k] = &re
	}
	return c
}

// Store implements dbx.Store. Transactions are serialized and roll back by
// restoring a snapshot taken at begin.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ dbx.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) Conn() dbx.DBTX { return handle{} }

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()

	return fn(ctx, handle{inTx: true})
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// with runs fn against the current state, taking the lock unless db says
// the caller is inside InTx.
func (s *Store) with(ctx context.Context, db dbx.DBTX, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h, ok := db.(handle); !ok || !h.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.FirstName = copyString(u.FirstName)
	c.LastName = copyString(u.LastName)
	return &c
}

func copyListener(p *models.ListenerProfile) *models.ListenerProfile {
	c := *p
	c.Preference = copyString(p.Preference)
	c.FavoriteGenre = copyString(p.FavoriteGenre)
	return &c
}

func copyArtist(p *models.ArtistProfile) *models.ArtistProfile {
	c := *p
	c.Genre = copyString(p.Genre)
	if p.LabelID != nil {
		id := *p.LabelID
		c.LabelID = &id
	}
	return &c
}

func copySubscription(s *models.Subscription) *models.Subscription {
	c := *s
	if s.EndDate != nil {
		end := *s.EndDate
		c.EndDate = &end
	}
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
