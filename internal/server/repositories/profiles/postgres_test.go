package profiles

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestEnsureListener_IsIdempotentInsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO listeners \(user_id\) VALUES \(\$1\) ON CONFLICT \(user_id\) DO NOTHING`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO listeners`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureListener(context.Background(), 1))
	require.NoError(t, repo.EnsureListener(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureArtist_StartsPending(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO artists \(user_id, verified_status\) VALUES \(\$1, \$2\) ON CONFLICT`).
		WithArgs(int64(2), "Pending").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.EnsureArtist(context.Background(), 2))
}

func TestEnsure_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO artists`).WillReturnError(errors.New("boom"))

	err := Ensure(context.Background(), repo, 2, models.RoleArtist)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestEnsure_GuestIsNoop(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	require.NoError(t, Ensure(context.Background(), repo, 2, models.RoleGuest))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetListener(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, user_id, preference, favorite_genre FROM listeners WHERE user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "preference", "favorite_genre"}).
			AddRow(int64(10), int64(1), nil, "jazz"))

	p, err := repo.GetListener(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.ID)
	assert.Nil(t, p.Preference)
	require.NotNil(t, p.FavoriteGenre)
	assert.Equal(t, "jazz", *p.FavoriteGenre)
}

func TestGetArtist_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM artists WHERE user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetArtist(context.Background(), 1)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateArtist(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	genre := "rock"
	mock.ExpectQuery(`(?s)UPDATE artists SET genre = COALESCE\(\$2, genre\).*RETURNING`).
		WithArgs(int64(1), "rock").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "genre", "verified_status", "total_followers", "label_id"}).
			AddRow(int64(3), int64(1), "rock", "Pending", int64(0), nil))

	p, err := repo.UpdateArtist(context.Background(), 1, &genre)
	require.NoError(t, err)
	assert.Equal(t, "Pending", p.VerifiedStatus)
	assert.Nil(t, p.LabelID)
}

func TestUpdateListener_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE listeners SET`).WillReturnError(sql.ErrNoRows)

	pref := "loud"
	_, err := repo.UpdateListener(context.Background(), 1, &pref, nil)
	require.ErrorIs(t, err, common.ErrNotFound)
}
