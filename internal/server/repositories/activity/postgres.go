package activity

import (
	"context"
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

type rowScanner interface {
	Scan(dest ...any) error
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, db dbx.DBTX, scan func(rowScanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// exec runs a write and returns the number of affected rows.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListenerCounts(ctx context.Context, listenerID int64) (*models.ListenerCounts, error) {
	query :=
		`SELECT
		   (SELECT count(*) FROM follows WHERE listener_id = $1),
		   (SELECT count(*) FROM reactions WHERE listener_id = $1),
		   (SELECT count(*) FROM play_history WHERE listener_id = $1)`
	c := &models.ListenerCounts{}
	if err := r.db.QueryRowContext(ctx, query, listenerID).Scan(&c.Following, &c.Reactions, &c.Plays); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) RecordPlay(ctx context.Context, play *models.Play) (*models.Play, error) {
	query :=
		`INSERT INTO play_history (listener_id, track_ref, listen_duration)
		 VALUES ($1, $2, $3)
		 RETURNING id, played_at`
	err := r.db.QueryRowContext(ctx, query, play.ListenerID, play.TrackRef, play.ListenDuration).
		Scan(&play.ID, &play.PlayedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return play, nil
}

func scanPlay(row rowScanner) (*models.Play, error) {
	p := &models.Play{}
	if err := row.Scan(&p.ID, &p.ListenerID, &p.TrackRef, &p.ListenDuration, &p.PlayedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) History(ctx context.Context, listenerID int64, page models.Page) ([]*models.Play, error) {
	query :=
		`SELECT id, listener_id, track_ref, listen_duration, played_at
		 FROM play_history
		 WHERE listener_id = $1
		 ORDER BY played_at DESC, id DESC
		 LIMIT $2 OFFSET $3`
	return queryAll(ctx, r.db, scanPlay, query, listenerID, page.Limit, page.Offset)
}

func (r *PostgresRepository) ArtistExists(ctx context.Context, artistID int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM artists WHERE id = $1)`, artistID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Follow(ctx context.Context, listenerID, artistID int64) error {
	n, err := r.exec(ctx,
		`INSERT INTO follows (listener_id, artist_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		listenerID, artistID)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrAlreadyFollowing
	}
	return nil
}

func (r *PostgresRepository) Unfollow(ctx context.Context, listenerID, artistID int64) error {
	n, err := r.exec(ctx, `DELETE FROM follows WHERE listener_id = $1 AND artist_id = $2`, listenerID, artistID)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFollowing
	}
	return nil
}

func (r *PostgresRepository) AdjustFollowers(ctx context.Context, artistID, delta int64) error {
	n, err := r.exec(ctx,
		`UPDATE artists SET total_followers = GREATEST(total_followers + $2, 0) WHERE id = $1`,
		artistID, delta)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrArtistNotFound
	}
	return nil
}

func (r *PostgresRepository) ReleaseFollows(ctx context.Context, listenerID int64) error {
	query :=
		`UPDATE artists SET total_followers = GREATEST(total_followers - 1, 0)
		 WHERE id IN (SELECT artist_id FROM follows WHERE listener_id = $1)`
	_, err := r.exec(ctx, query, listenerID)
	return err
}

func scanFollowed(row rowScanner) (*models.FollowedArtist, error) {
	a := &models.FollowedArtist{}
	err := row.Scan(&a.ArtistID, &a.UserID, &a.Username, &a.FirstName, &a.LastName,
		&a.Genre, &a.VerifiedStatus, &a.TotalFollowers, &a.FollowedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) Following(ctx context.Context, listenerID int64, page models.Page) ([]*models.FollowedArtist, error) {
	query :=
		`SELECT a.id, u.id, u.username, u.first_name, u.last_name,
		        a.genre, a.verified_status, a.total_followers, f.followed_at
		 FROM follows f
		 JOIN artists a ON a.id = f.artist_id
		 JOIN users u ON u.id = a.user_id
		 WHERE f.listener_id = $1
		 ORDER BY f.followed_at DESC, a.id DESC
		 LIMIT $2 OFFSET $3`
	return queryAll(ctx, r.db, scanFollowed, query, listenerID, page.Limit, page.Offset)
}

func (r *PostgresRepository) React(ctx context.Context, re *models.Reaction) (*models.Reaction, error) {
	query :=
		`INSERT INTO reactions (listener_id, reactable_type, reactable_ref, emotion)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT ON CONSTRAINT reactions_target_key
		 DO UPDATE SET emotion = EXCLUDED.emotion, reacted_at = now()
		 RETURNING id, reacted_at`
	err := r.db.QueryRowContext(ctx, query, re.ListenerID, string(re.ReactableType), re.ReactableRef, re.Emotion).
		Scan(&re.ID, &re.ReactedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return re, nil
}

func scanReaction(row rowScanner) (*models.Reaction, error) {
	re := &models.Reaction{}
	var kind string
	if err := row.Scan(&re.ID, &re.ListenerID, &kind, &re.ReactableRef, &re.Emotion, &re.ReactedAt); err != nil {
		return nil, err
	}
	re.ReactableType = models.ReactableType(kind)
	return re, nil
}

func (r *PostgresRepository) Reactions(ctx context.Context, listenerID int64, kind models.ReactableType, page models.Page) ([]*models.Reaction, error) {
	query :=
		`SELECT id, listener_id, reactable_type, reactable_ref, emotion, reacted_at
		 FROM reactions
		 WHERE listener_id = $1 AND ($2::text = '' OR reactable_type = $2)
		 ORDER BY reacted_at DESC, id DESC
		 LIMIT $3 OFFSET $4`
	return queryAll(ctx, r.db, scanReaction, query, listenerID, string(kind), page.Limit, page.Offset)
}
