package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

type activityRepo struct {
	store *Store
	db    dbx.DBTX
}

func (st *state) artistByID(artistID int64) *models.ArtistProfile {
	for _, a := range st.artists {
		if a.ID == artistID {
			return a
		}
	}
	return nil
}

func (st *state) requireListener(listenerID int64) error {
	for _, l := range st.listeners {
		if l.ID == listenerID {
			return nil
		}
	}
	return common.ErrNotFound
}

// dropListenerActivity mirrors ON DELETE CASCADE from listeners.
func (st *state) dropListenerActivity(listenerID int64) {
	for k := range st.follows {
		if k.listenerID == listenerID {
			delete(st.follows, k)
		}
	}
	for id, p := range st.plays {
		if p.ListenerID == listenerID {
			delete(st.plays, id)
		}
	}
	for id, re := range st.reactions {
		if re.ListenerID == listenerID {
			delete(st.reactions, id)
		}
	}
}

// dropArtistFollows mirrors ON DELETE CASCADE from artists.
func (st *state) dropArtistFollows(artistID int64) {
	for k := range st.follows {
		if k.artistID == artistID {
			delete(st.follows, k)
		}
	}
}

// paginate returns the page of items; items must already be sorted.
func paginate[T any](items []T, page models.Page) []T {
	out := []T{}
	for i := page.Offset; i < len(items) && len(out) < page.Limit; i++ {
		out = append(out, items[i])
	}
	return out
}

func (r *activityRepo) ListenerCounts(ctx context.Context, listenerID int64) (*models.ListenerCounts, error) {
	c := &models.ListenerCounts{}
	err := r.store.with(ctx, r.db, func(st *state) error {
		for k := range st.follows {
			if k.listenerID == listenerID {
				c.Following++
			}
		}
		for _, re := range st.reactions {
			if re.ListenerID == listenerID {
				c.Reactions++
			}
		}
		for _, p := range st.plays {
			if p.ListenerID == listenerID {
				c.Plays++
			}
		}
		return nil
	})
	return c, err
}

func (r *activityRepo) RecordPlay(ctx context.Context, play *models.Play) (*models.Play, error) {
	err := r.store.with(ctx, r.db, func(st *state) error {
		if err := st.requireListener(play.ListenerID); err != nil {
			return err
		}
		st.nextPlay++
		play.ID = st.nextPlay
		play.PlayedAt = time.Now().UTC()
		c := *play
		st.plays[play.ID] = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return play, nil
}

func (r *activityRepo) History(ctx context.Context, listenerID int64, page models.Page) ([]*models.Play, error) {
	var out []*models.Play
	err := r.store.with(ctx, r.db, func(st *state) error {
		var all []*models.Play
		for _, p := range st.plays {
			if p.ListenerID == listenerID {
				c := *p
				all = append(all, &c)
			}
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].PlayedAt.Equal(all[j].PlayedAt) {
				return all[i].PlayedAt.After(all[j].PlayedAt)
			}
			return all[i].ID > all[j].ID
		})
		out = paginate(all, page)
		return nil
	})
	return out, err
}

func (r *activityRepo) ArtistExists(ctx context.Context, artistID int64) (bool, error) {
	var ok bool
	err := r.store.with(ctx, r.db, func(st *state) error {
		ok = st.artistByID(artistID) != nil
		return nil
	})
	return ok, err
}

func (r *activityRepo) Follow(ctx context.Context, listenerID, artistID int64) error {
	return r.store.with(ctx, r.db, func(st *state) error {
		if err := st.requireListener(listenerID); err != nil {
			return err
		}
		if st.artistByID(artistID) == nil {
			return common.ErrArtistNotFound
		}
		k := followKey{listenerID: listenerID, artistID: artistID}
		if _, ok := st.follows[k]; ok {
			return common.ErrAlreadyFollowing
		}
		st.follows[k] = time.Now().UTC()
		return nil
	})
}

func (r *activityRepo) Unfollow(ctx context.Context, listenerID, artistID int64) error {
	return r.store.with(ctx, r.db, func(st *state) error {
		k := followKey{listenerID: listenerID, artistID: artistID}
		if _, ok := st.follows[k]; !ok {
			return common.ErrNotFollowing
		}
		delete(st.follows, k)
		return nil
	})
}

func (r *activityRepo) AdjustFollowers(ctx context.Context, artistID, delta int64) error {
	return r.store.with(ctx, r.db, func(st *state) error {
		a := st.artistByID(artistID)
		if a == nil {
			return common.ErrArtistNotFound
		}
		a.TotalFollowers = max(a.TotalFollowers+delta, 0)
		return nil
	})
}

func (r *activityRepo) ReleaseFollows(ctx context.Context, listenerID int64) error {
	return r.store.with(ctx, r.db, func(st *state) error {
		for k := range st.follows {
			if k.listenerID != listenerID {
				continue
			}
			if a := st.artistByID(k.artistID); a != nil {
				a.TotalFollowers = max(a.TotalFollowers-1, 0)
			}
		}
		return nil
	})
}

func (r *activityRepo) Following(ctx context.Context, listenerID int64, page models.Page) ([]*models.FollowedArtist, error) {
	var out []*models.FollowedArtist
	err := r.store.with(ctx, r.db, func(st *state) error {
		var all []*models.FollowedArtist
		for k, at := range st.follows {
			if k.listenerID != listenerID {
				continue
			}
			a := st.artistByID(k.artistID)
			if a == nil {
				continue
			}
			u := st.users[a.UserID]
			if u == nil {
				continue
			}
			all = append(all, &models.FollowedArtist{
				ArtistID:       a.ID,
				UserID:         u.ID,
				Username:       u.Username,
				FirstName:      copyString(u.FirstName),
				LastName:       copyString(u.LastName),
				Genre:          copyString(a.Genre),
				VerifiedStatus: a.VerifiedStatus,
				TotalFollowers: a.TotalFollowers,
				FollowedAt:     at,
			})
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].FollowedAt.Equal(all[j].FollowedAt) {
				return all[i].FollowedAt.After(all[j].FollowedAt)
			}
			return all[i].ArtistID > all[j].ArtistID
		})
		out = paginate(all, page)
		return nil
	})
	return out, err
}

func (r *activityRepo) React(ctx context.Context, re *models.Reaction) (*models.Reaction, error) {
	err := r.store.with(ctx, r.db, func(st *state) error {
		if err := st.requireListener(re.ListenerID); err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, cur := range st.reactions {
			if cur.ListenerID == re.ListenerID && cur.ReactableType == re.ReactableType && cur.ReactableRef == re.ReactableRef {
				cur.Emotion = re.Emotion
				cur.ReactedAt = now
				re.ID = cur.ID
				re.ReactedAt = now
				return nil
			}
		}
		st.nextReaction++
		re.ID = st.nextReaction
		re.ReactedAt = now
		c := *re
		st.reactions[re.ID] = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return re, nil
}

func (r *activityRepo) Reactions(ctx context.Context, listenerID int64, kind models.ReactableType, page models.Page) ([]*models.Reaction, error) {
	var out []*models.Reaction
	err := r.store.with(ctx, r.db, func(st *state) error {
		var all []*models.Reaction
		for _, re := range st.reactions {
			if re.ListenerID != listenerID || (kind != "" && re.ReactableType != kind) {
				continue
			}
			c := *re
			all = append(all, &c)
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].ReactedAt.Equal(all[j].ReactedAt) {
				return all[i].ReactedAt.After(all[j].ReactedAt)
			}
			return all[i].ID > all[j].ID
		})
		out = paginate(all, page)
		return nil
	})
	return out, err
}
