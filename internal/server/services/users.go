// Package services implements the account and subscription use cases on top
// of the repositories. Every multi-statement operation runs in one
// transaction obtained from dbx.Store.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/logging"
	"github.com/dmitrijs2005/soundhub/internal/server/auth"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soundhub/internal/server/validation"
)

type UserService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(store dbx.Store, m repomanager.RepositoryManager, hasher auth.PasswordHasher, logger logging.Logger) *UserService {
	return &UserService{
		store:       store,
		repomanager: m,
		hasher:      hasher,
		logger:      logger,
	}
}

// Register creates a user with the requested role (Guest by default) and,
// for Listener and Artist, the matching extension record in the same
// transaction. The pre-checks only exit early; the unique constraints of
// the store decide races.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, common.NewValidationError("role", "Role must be 'Guest', 'Listener', or 'Artist'")
	}

	repo := s.repomanager.Users(s.store.Conn())
	if taken, err := repo.EmailTaken(ctx, in.Email, 0); err != nil {
		return nil, internalError("check email", err)
	} else if taken {
		return nil, common.NewConflictError("email")
	}
	if taken, err := repo.UsernameTaken(ctx, in.Username, 0); err != nil {
		return nil, internalError("check username", err)
	} else if taken {
		return nil, common.NewConflictError("username")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		return profiles.Ensure(ctx, s.repomanager.Profiles(tx), user.ID, role)
	})
	if err != nil {
		return nil, internalError("register", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "role", string(role))
	return user, nil
}

// Login resolves the identifier against email or username and checks the
// password. Unknown identifiers and wrong passwords fail identically.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	creds := credentials{Login: in.identifier(), Password: in.Password}
	if err := validation.Struct(&creds); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.store.Conn()).GetByLogin(ctx, creds.Login)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// same bcrypt cost as a real mismatch
			s.hasher.Verify(creds.Password, s.dummy())
			return nil, common.ErrInvalidCredentials
		}
		return nil, internalError("login", err)
	}

	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// fallbackDummyHash is a cost-10 bcrypt hash used when the configured hasher
// cannot produce one.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		plain, err := common.MakeRandHexString(16)
		if err != nil {
			plain = "soundhub-dummy-password"
		}
		s.dummyHash, err = s.hasher.Hash(plain)
		if err != nil || s.dummyHash == "" {
			s.logger.Error(context.Background(), "dummy hash failed, using fallback", "error", err)
			s.dummyHash = fallbackDummyHash
		}
	})
	return s.dummyHash
}

// Profile returns the user with the extension record of the active role.
func (s *UserService) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	conn := s.store.Conn()
	user, err := s.repomanager.Users(conn).GetByID(ctx, userID)
	if err != nil {
		return nil, internalError("get user", err)
	}

	p := &models.Profile{User: user}
	switch user.Role {
	case models.RoleListener:
		p.Listener, err = s.repomanager.Profiles(conn).GetListener(ctx, userID)
	case models.RoleArtist:
		p.Artist, err = s.repomanager.Profiles(conn).GetArtist(ctx, userID)
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, internalError("get extension", err)
	}
	return p, nil
}

// UpdateProfile changes any subset of email, username and names. Email and
// username are checked against other users only.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	patch := models.UserPatch{Email: in.Email, Username: in.Username, FirstName: in.FirstName, LastName: in.LastName}
	if patch.Empty() {
		return nil, common.ErrNoOp
	}

	repo := s.repomanager.Users(s.store.Conn())
	if patch.Email != nil {
		if taken, err := repo.EmailTaken(ctx, *patch.Email, userID); err != nil {
			return nil, internalError("check email", err)
		} else if taken {
			return nil, common.NewConflictError("email")
		}
	}
	if patch.Username != nil {
		if taken, err := repo.UsernameTaken(ctx, *patch.Username, userID); err != nil {
			return nil, internalError("check username", err)
		} else if taken {
			return nil, common.NewConflictError("username")
		}
	}

	user, err := repo.Update(ctx, userID, patch)
	if err != nil {
		return nil, internalError("update profile", err)
	}
	return user, nil
}

// ChangePassword replaces the hash after verifying the current password.
// Previously issued credentials stay valid.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.store.Conn())
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return internalError("get user", err)
	}
	if !s.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
		return common.ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return internalError("hash password", err)
	}
	return internalError("update password", repo.UpdatePassword(ctx, userID, hash))
}

// Delete removes the account; dependent rows cascade in storage. Artists
// the user followed lose one follower each.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		l, err := s.repomanager.Profiles(tx).GetListener(ctx, userID)
		if err == nil {
			if err := s.repomanager.Activity(tx).ReleaseFollows(ctx, l.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, userID)
	})
	if err != nil {
		return internalError("delete user", err)
	}
	s.logger.Info(ctx, "user deleted", "user_id", userID)
	return nil
}

// UpgradeRole validates the request and applies ChangeRole.
func (s *UserService) UpgradeRole(ctx context.Context, userID int64, in ChangeRoleInput) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	return s.ChangeRole(ctx, userID, models.Role(in.NewRole))
}

// ChangeRole moves the user to target. Moving to the current role fails
// with *common.RoleConflictError; every other transition is allowed.
func (s *UserService) ChangeRole(ctx context.Context, userID int64, target models.Role) (*models.User, error) {
	if !target.Valid() {
		return nil, common.NewValidationError("new_role", "Role must be 'Guest', 'Listener', or 'Artist'")
	}

	var user *models.User
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = transitionRole(ctx, s.repomanager, tx, userID, target, true)
		return err
	})
	if err != nil {
		return nil, internalError("change role", err)
	}

	s.logger.Info(ctx, "role changed", "user_id", userID, "role", string(target))
	return user, nil
}

// UpdatePreferences edits the listener extension record, creating it first
// if it went missing.
func (s *UserService) UpdatePreferences(ctx context.Context, userID int64, in ListenerPreferencesInput) (*models.ListenerProfile, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if in.Preference == nil && in.FavoriteGenre == nil {
		return nil, common.ErrNoOp
	}

	var out *models.ListenerProfile
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Profiles(tx)
		if err := repo.EnsureListener(ctx, userID); err != nil {
			return err
		}
		var err error
		out, err = repo.UpdateListener(ctx, userID, in.Preference, in.FavoriteGenre)
		return err
	})
	if err != nil {
		return nil, internalError("update preferences", err)
	}
	return out, nil
}

// UpdateArtistProfile edits the artist extension record, creating it first
// if it went missing.
func (s *UserService) UpdateArtistProfile(ctx context.Context, userID int64, in ArtistProfileInput) (*models.ArtistProfile, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if in.Genre == nil {
		return nil, common.ErrNoOp
	}

	var out *models.ArtistProfile
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Profiles(tx)
		if err := repo.EnsureArtist(ctx, userID); err != nil {
			return err
		}
		var err error
		out, err = repo.UpdateArtist(ctx, userID, in.Genre)
		return err
	})
	if err != nil {
		return nil, internalError("update artist profile", err)
	}
	return out, nil
}
