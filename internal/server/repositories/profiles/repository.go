package profiles

import (
	"context"

	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

// Repository manages the role-specific extension records. Ensure* calls are
// idempotent: an existing record is left as is.
type Repository interface {
	EnsureListener(ctx context.Context, userID int64) error
	EnsureArtist(ctx context.Context, userID int64) error
	GetListener(ctx context.Context, userID int64) (*models.ListenerProfile, error)
	GetArtist(ctx context.Context, userID int64) (*models.ArtistProfile, error)
	UpdateListener(ctx context.Context, userID int64, preference, favoriteGenre *string) (*models.ListenerProfile, error)
	UpdateArtist(ctx context.Context, userID int64, genre *string) (*models.ArtistProfile, error)
}

// Ensure creates the extension record matching role. Guest has none.
func Ensure(ctx context.Context, repo Repository, userID int64, role models.Role) error {
	switch role {
	case models.RoleListener:
		return repo.EnsureListener(ctx, userID)
	case models.RoleArtist:
		return repo.EnsureArtist(ctx, userID)
	}
	return nil
}
