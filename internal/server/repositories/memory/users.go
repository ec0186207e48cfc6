package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

type userRepo struct {
	store *Store
	db    dbx.DBTX
}

func (st *state) findUser(match func(u *models.User) bool) *models.User {
	for _, u := range st.users {
		if match(u) {
			return u
		}
	}
	return nil
}

// checkUnique enforces the UNIQUE(email) and UNIQUE(username) constraints.
func (st *state) checkUnique(email, username string, selfID int64) error {
	if st.findUser(func(u *models.User) bool { return u.ID != selfID && u.Email == email }) != nil {
		return common.NewConflictError("email")
	}
	if st.findUser(func(u *models.User) bool { return u.ID != selfID && u.Username == username }) != nil {
		return common.NewConflictError("username")
	}
	return nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.store.with(ctx, r.db, func(st *state) error {
		if err := st.checkUnique(user.Email, user.Username, 0); err != nil {
			return err
		}
		st.nextUser++
		now := time.Now().UTC()
		user.ID = st.nextUser
		user.CreatedAt = now
		user.UpdatedAt = now
		st.users[user.ID] = copyUser(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) get(ctx context.Context, match func(u *models.User) bool) (*models.User, error) {
	var found *models.User
	err := r.store.with(ctx, r.db, func(st *state) error {
		u := st.findUser(match)
		if u == nil {
			return common.ErrNotFound
		}
		found = copyUser(u)
		return nil
	})
	return found, err
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, func(u *models.User) bool { return u.ID == id })
}

func (r *userRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.get(ctx, func(u *models.User) bool { return u.Email == login || u.Username == login })
}

func (r *userRepo) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	_, err := r.get(ctx, func(u *models.User) bool { return u.ID != excludeID && u.Email == email })
	return taken(err)
}

func (r *userRepo) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	_, err := r.get(ctx, func(u *models.User) bool { return u.ID != excludeID && u.Username == username })
	return taken(err)
}

func taken(err error) (bool, error) {
	switch err {
	case nil:
		return true, nil
	case common.ErrNotFound:
		return false, nil
	}
	return false, err
}

func (r *userRepo) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var updated *models.User
	err := r.store.with(ctx, r.db, func(st *state) error {
		cur, ok := st.users[id]
		if !ok {
			return common.ErrNotFound
		}
		next := copyUser(cur)
		if patch.Email != nil {
			next.Email = *patch.Email
		}
		if patch.Username != nil {
			next.Username = *patch.Username
		}
		if patch.FirstName != nil {
			next.FirstName = copyString(patch.FirstName)
		}
		if patch.LastName != nil {
			next.LastName = copyString(patch.LastName)
		}
		if err := st.checkUnique(next.Email, next.Username, id); err != nil {
			return err
		}
		next.UpdatedAt = time.Now().UTC()
		st.users[id] = next
		updated = copyUser(next)
		return nil
	})
	return updated, err
}

func (r *userRepo) modify(ctx context.Context, id int64, fn func(u *models.User)) error {
	return r.store.with(ctx, r.db, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return common.ErrNotFound
		}
		fn(u)
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.modify(ctx, id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *userRepo) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	return r.modify(ctx, id, func(u *models.User) { u.Role = role })
}

// Delete removes the user and cascades to extension records, activity and
// subscriptions. Follower counters are left alone, as in SQL.
func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.store.with(ctx, r.db, func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return common.ErrNotFound
		}
		if l, ok := st.listeners[id]; ok {
			st.dropListenerActivity(l.ID)
		}
		if a, ok := st.artists[id]; ok {
			st.dropArtistFollows(a.ID)
		}
		delete(st.users, id)
		delete(st.listeners, id)
		delete(st.artists, id)
		for sid, s := range st.subs {
			if s.UserID == id {
				delete(st.subs, sid)
			}
		}
		return nil
	})
}
