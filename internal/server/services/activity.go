package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/logging"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soundhub/internal/server/validation"
)

// ActivityService covers what a listener does with the catalogue: plays,
// follows and reactions. Callers are expected to have passed the listener
// policy; a missing listener record is created on first write.
type ActivityService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewActivityService(store dbx.Store, m repomanager.RepositoryManager, logger logging.Logger) *ActivityService {
	return &ActivityService{
		store:       store,
		repomanager: m,
		logger:      logger,
	}
}

// listenerID returns the id of the user's listener record, creating it when
// create is set. Without create, a missing record yields common.ErrNotFound.
func (s *ActivityService) listenerID(ctx context.Context, db dbx.DBTX, userID int64, create bool) (int64, error) {
	repo := s.repomanager.Profiles(db)
	if create {
		if err := repo.EnsureListener(ctx, userID); err != nil {
			return 0, err
		}
	}
	l, err := repo.GetListener(ctx, userID)
	if err != nil {
		return 0, err
	}
	return l.ID, nil
}

// Stats returns the counters for the user's active role.
func (s *ActivityService) Stats(ctx context.Context, userID int64) (*models.UserStats, error) {
	conn := s.store.Conn()
	user, err := s.repomanager.Users(conn).GetByID(ctx, userID)
	if err != nil {
		return nil, internalError("get user", err)
	}

	stats := &models.UserStats{Role: user.Role}
	switch user.Role {
	case models.RoleListener:
		id, err := s.listenerID(ctx, conn, userID, false)
		if errors.Is(err, common.ErrNotFound) {
			stats.Listener = &models.ListenerCounts{}
			break
		} else if err != nil {
			return nil, internalError("get listener", err)
		}
		if stats.Listener, err = s.repomanager.Activity(conn).ListenerCounts(ctx, id); err != nil {
			return nil, internalError("listener counts", err)
		}
	case models.RoleArtist:
		var followers int64
		a, err := s.repomanager.Profiles(conn).GetArtist(ctx, userID)
		if err == nil {
			followers = a.TotalFollowers
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, internalError("get artist", err)
		}
		stats.Followers = &followers
	}
	return stats, nil
}

func (s *ActivityService) RecordPlay(ctx context.Context, userID int64, in RecordPlayInput) (*models.Play, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var play *models.Play
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.listenerID(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		play, err = s.repomanager.Activity(tx).RecordPlay(ctx, &models.Play{
			ListenerID:     id,
			TrackRef:       in.TrackRef,
			ListenDuration: *in.ListenDuration,
		})
		return err
	})
	if err != nil {
		return nil, internalError("record play", err)
	}
	return play, nil
}

// History lists plays newest first.
func (s *ActivityService) History(ctx context.Context, userID int64, page models.Page) ([]*models.Play, error) {
	conn := s.store.Conn()
	id, err := s.listenerID(ctx, conn, userID, false)
	if errors.Is(err, common.ErrNotFound) {
		return []*models.Play{}, nil
	} else if err != nil {
		return nil, internalError("get listener", err)
	}

	plays, err := s.repomanager.Activity(conn).History(ctx, id, page)
	if err != nil {
		return nil, internalError("play history", err)
	}
	return plays, nil
}

// Following lists followed artists, most recent follow first.
func (s *ActivityService) Following(ctx context.Context, userID int64, page models.Page) ([]*models.FollowedArtist, error) {
	conn := s.store.Conn()
	id, err := s.listenerID(ctx, conn, userID, false)
	if errors.Is(err, common.ErrNotFound) {
		return []*models.FollowedArtist{}, nil
	} else if err != nil {
		return nil, internalError("get listener", err)
	}

	list, err := s.repomanager.Activity(conn).Following(ctx, id, page)
	if err != nil {
		return nil, internalError("following", err)
	}
	return list, nil
}

// Follow adds the artist to the user's follows and bumps the artist's
// follower counter in the same transaction.
func (s *ActivityService) Follow(ctx context.Context, userID, artistID int64) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.listenerID(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		repo := s.repomanager.Activity(tx)
		if ok, err := repo.ArtistExists(ctx, artistID); err != nil {
			return err
		} else if !ok {
			return common.ErrArtistNotFound
		}
		if err := repo.Follow(ctx, id, artistID); err != nil {
			return err
		}
		return repo.AdjustFollowers(ctx, artistID, 1)
	})
	if err != nil {
		return internalError("follow", err)
	}

	s.logger.Info(ctx, "artist followed", "user_id", userID, "artist_id", artistID)
	return nil
}

// Unfollow is the inverse of Follow. The counter never drops below zero.
func (s *ActivityService) Unfollow(ctx context.Context, userID, artistID int64) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.listenerID(ctx, tx, userID, false)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFollowing
		} else if err != nil {
			return err
		}
		repo := s.repomanager.Activity(tx)
		if err := repo.Unfollow(ctx, id, artistID); err != nil {
			return err
		}
		return repo.AdjustFollowers(ctx, artistID, -1)
	})
	if err != nil {
		return internalError("unfollow", err)
	}

	s.logger.Info(ctx, "artist unfollowed", "user_id", userID, "artist_id", artistID)
	return nil
}

// React records the listener's reaction to a song or artwork. Reacting to
// the same target again replaces the emotion.
func (s *ActivityService) React(ctx context.Context, userID int64, in ReactInput) (*models.Reaction, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var out *models.Reaction
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.listenerID(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		out, err = s.repomanager.Activity(tx).React(ctx, &models.Reaction{
			ListenerID:    id,
			ReactableType: models.ReactableType(in.Type),
			ReactableRef:  in.ReactableRef,
			Emotion:       in.Emotion,
		})
		return err
	})
	if err != nil {
		return nil, internalError("react", err)
	}
	return out, nil
}

// Reactions lists reactions newest first, optionally of one type only.
func (s *ActivityService) Reactions(ctx context.Context, userID int64, kind models.ReactableType, page models.Page) ([]*models.Reaction, error) {
	conn := s.store.Conn()
	id, err := s.listenerID(ctx, conn, userID, false)
	if errors.Is(err, common.ErrNotFound) {
		return []*models.Reaction{}, nil
	} else if err != nil {
		return nil, internalError("get listener", err)
	}

	list, err := s.repomanager.Activity(conn).Reactions(ctx, id, kind, page)
	if err != nil {
		return nil, internalError("reactions", err)
	}
	return list, nil
}
