package users

import (
	"context"

	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

// Repository is the credential store. Email and username are unique; a
// violation surfaces as *common.ConflictError naming the field.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// GetByLogin matches login against email OR username.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateRole(ctx context.Context, id int64, role models.Role) error
	Delete(ctx context.Context, id int64) error
}
