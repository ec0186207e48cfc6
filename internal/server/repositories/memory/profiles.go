package memory

import (
	"context"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

type profileRepo struct {
	store *Store
	db    dbx.DBTX
}

func (st *state) requireUser(userID int64) error {
	if _, ok := st.users[userID]; !ok {
		// foreign key violation in SQL terms
		return common.ErrNotFound
	}
	return nil
}

func (r *profileRepo) EnsureListener(ctx context.Context, userID int64) error {
	return r.store.with(ctx, r.db, func(st *state) error {
		if err := st.requireUser(userID); err != nil {
			return err
		}
		if _, ok := st.listeners[userID]; ok {
			return nil
		}
		st.nextListener++
		st.listeners[userID] = &models.ListenerProfile{ID: st.nextListener, UserID: userID}
		return nil
	})
}

func (r *profileRepo) EnsureArtist(ctx context.Context, userID int64) error {
	return r.store.with(ctx, r.db, func(st *state) error {
		if err := st.requireUser(userID); err != nil {
			return err
		}
		if _, ok := st.artists[userID]; ok {
			return nil
		}
		st.nextArtist++
		st.artists[userID] = &models.ArtistProfile{
			ID:             st.nextArtist,
			UserID:         userID,
			VerifiedStatus: models.VerifiedStatusPending,
		}
		return nil
	})
}

func (r *profileRepo) GetListener(ctx context.Context, userID int64) (*models.ListenerProfile, error) {
	var out *models.ListenerProfile
	err := r.store.with(ctx, r.db, func(st *state) error {
		p, ok := st.listeners[userID]
		if !ok {
			return common.ErrNotFound
		}
		out = copyListener(p)
		return nil
	})
	return out, err
}

func (r *profileRepo) GetArtist(ctx context.Context, userID int64) (*models.ArtistProfile, error) {
	var out *models.ArtistProfile
	err := r.store.with(ctx, r.db, func(st *state) error {
		p, ok := st.artists[userID]
		if !ok {
			return common.ErrNotFound
		}
		out = copyArtist(p)
		return nil
	})
	return out, err
}

func (r *profileRepo) UpdateListener(ctx context.Context, userID int64, preference, favoriteGenre *string) (*models.ListenerProfile, error) {
	var out *models.ListenerProfile
	err := r.store.with(ctx, r.db, func(st *state) error {
		p, ok := st.listeners[userID]
		if !ok {
			return common.ErrNotFound
		}
		if preference != nil {
			p.Preference = copyString(preference)
		}
		if favoriteGenre != nil {
			p.FavoriteGenre = copyString(favoriteGenre)
		}
		out = copyListener(p)
		return nil
	})
	return out, err
}

func (r *profileRepo) UpdateArtist(ctx context.Context, userID int64, genre *string) (*models.ArtistProfile, error) {
	var out *models.ArtistProfile
	err := r.store.with(ctx, r.db, func(st *state) error {
		p, ok := st.artists[userID]
		if !ok {
			return common.ErrNotFound
		}
		if genre != nil {
			p.Genre = copyString(genre)
		}
		out = copyArtist(p)
		return nil
	})
	return out, err
}
