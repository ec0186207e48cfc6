package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionRole(t *testing.T) {
	tests := []struct {
		name    string
		from    models.Role
		to      models.Role
		strict  bool
		wantErr error
	}{
		{name: "upgrade", from: models.RoleGuest, to: models.RoleArtist, strict: true},
		{name: "downgrade", from: models.RoleListener, to: models.RoleGuest, strict: false},
		{name: "same role strict", from: models.RoleListener, to: models.RoleListener, strict: true, wantErr: common.ErrConflict},
		{name: "same role lenient", from: models.RoleGuest, to: models.RoleGuest, strict: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			u := f.register(t, "alice", tt.from)

			var got *models.User
			err := f.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
				var err error
				got, err = transitionRole(ctx, f.rm, tx, u.ID, tt.to, tt.strict)
				return err
			})
			if tt.wantErr != nil {
				var rc *common.RoleConflictError
				require.ErrorAs(t, err, &rc)
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Role)

			p, err := f.users.Profile(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.to, p.User.Role)
		})
	}
}

func TestTransitionRole_UnknownUser(t *testing.T) {
	f := newFixture(t)
	err := f.store.InTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		_, err := transitionRole(ctx, f.rm, tx, 404, models.RoleGuest, false)
		return err
	})
	require.ErrorIs(t, err, common.ErrNotFound)
}
