package activity

import (
	"context"

	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

// Repository stores listener activity: plays, follows and reactions. All
// ids are extension record ids (listeners.id, artists.id), not user ids.
type Repository interface {
	ListenerCounts(ctx context.Context, listenerID int64) (*models.ListenerCounts, error)

	RecordPlay(ctx context.Context, play *models.Play) (*models.Play, error)
	History(ctx context.Context, listenerID int64, page models.Page) ([]*models.Play, error)

	ArtistExists(ctx context.Context, artistID int64) (bool, error)
	// Follow fails with common.ErrAlreadyFollowing on a duplicate.
	Follow(ctx context.Context, listenerID, artistID int64) error
	// Unfollow fails with common.ErrNotFollowing when there is nothing to remove.
	Unfollow(ctx context.Context, listenerID, artistID int64) error
	// AdjustFollowers adds delta to the artist's follower counter, never
	// going below zero.
	AdjustFollowers(ctx context.Context, artistID, delta int64) error
	// ReleaseFollows decrements the counter of every artist the listener
	// follows. Call it before the listener record goes away.
	ReleaseFollows(ctx context.Context, listenerID int64) error
	Following(ctx context.Context, listenerID int64, page models.Page) ([]*models.FollowedArtist, error)

	// React stores the reaction, replacing the emotion of an existing one
	// for the same target.
	React(ctx context.Context, r *models.Reaction) (*models.Reaction, error)
	// Reactions lists newest first; an empty kind lists every type.
	Reactions(ctx context.Context, listenerID int64, kind models.ReactableType, page models.Page) ([]*models.Reaction, error)
}
