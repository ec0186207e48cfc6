package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EnsureListener(ctx context.Context, userID int64) error {
	query := `INSERT INTO listeners (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) EnsureArtist(ctx context.Context, userID int64) error {
	query := `INSERT INTO artists (user_id, verified_status) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, models.VerifiedStatusPending); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetListener(ctx context.Context, userID int64) (*models.ListenerProfile, error) {
	query := `SELECT id, user_id, preference, favorite_genre FROM listeners WHERE user_id = $1`
	return scanListener(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) GetArtist(ctx context.Context, userID int64) (*models.ArtistProfile, error) {
	query := `SELECT id, user_id, genre, verified_status, total_followers, label_id FROM artists WHERE user_id = $1`
	return scanArtist(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) UpdateListener(ctx context.Context, userID int64, preference, favoriteGenre *string) (*models.ListenerProfile, error) {
	query :=
		`UPDATE listeners SET
		   preference = COALESCE($2, preference),
		   favorite_genre = COALESCE($3, favorite_genre)
		 WHERE user_id = $1
		 RETURNING id, user_id, preference, favorite_genre`
	return scanListener(r.db.QueryRowContext(ctx, query, userID, preference, favoriteGenre))
}

func (r *PostgresRepository) UpdateArtist(ctx context.Context, userID int64, genre *string) (*models.ArtistProfile, error) {
	query :=
		`UPDATE artists SET genre = COALESCE($2, genre)
		 WHERE user_id = $1
		 RETURNING id, user_id, genre, verified_status, total_followers, label_id`
	return scanArtist(r.db.QueryRowContext(ctx, query, userID, genre))
}

func scanListener(row *sql.Row) (*models.ListenerProfile, error) {
	p := &models.ListenerProfile{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Preference, &p.FavoriteGenre); err != nil {
		return nil, notFoundOr(err)
	}
	return p, nil
}

func scanArtist(row *sql.Row) (*models.ArtistProfile, error) {
	p := &models.ArtistProfile{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Genre, &p.VerifiedStatus, &p.TotalFollowers, &p.LabelID); err != nil {
		return nil, notFoundOr(err)
	}
	return p, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
