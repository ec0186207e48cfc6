package services

import (
	"context"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/repomanager"
)

// applyRole sets the user's role and lazily creates the extension record of
// the new role. Records of previous roles are kept. Call it inside a
// transaction so both writes fail together.
func applyRole(ctx context.Context, m repomanager.RepositoryManager, tx dbx.DBTX, userID int64, role models.Role) error {
	if err := m.Users(tx).UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	return profiles.Ensure(ctx, m.Profiles(tx), userID, role)
}

// transitionRole loads the user inside tx and moves it to target. When the
// user already holds target, strict yields *common.RoleConflictError and
// otherwise the user is returned unchanged.
func transitionRole(ctx context.Context, m repomanager.RepositoryManager, tx dbx.DBTX, userID int64, target models.Role, strict bool) (*models.User, error) {
	u, err := m.Users(tx).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role == target {
		if strict {
			return nil, &common.RoleConflictError{Role: string(target)}
		}
		return u, nil
	}
	if err := applyRole(ctx, m, tx, userID, target); err != nil {
		return nil, err
	}
	u.Role = target
	return u, nil
}
