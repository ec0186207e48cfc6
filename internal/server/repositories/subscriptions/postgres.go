package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

const subscriptionSelect = `SELECT s.id, s.user_id, s.plan_id, p.name, p.plan_type, p.price, s.start_date, s.end_date, s.status
		 FROM subscriptions s
		 JOIN plans p ON p.id = s.plan_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*models.Plan, error) {
	p := &models.Plan{}
	var planType string
	if err := row.Scan(&p.ID, &p.Name, &planType, &p.Price, &p.DurationDays); err != nil {
		return nil, err
	}
	p.Type = models.Role(planType)
	return p, nil
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	s := &models.Subscription{}
	var planType, status string
	err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &s.PlanName, &planType, &s.Price,
		&s.StartDate, &s.EndDate, &status)
	if err != nil {
		return nil, err
	}
	s.PlanType = models.Role(planType)
	s.Status = models.SubscriptionStatus(status)
	return s, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, plan_type, price, duration_days FROM plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return plans, nil
}

func (r *PostgresRepository) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, plan_type, price, duration_days FROM plans WHERE id = $1`, id)
	p, err := scanPlan(row)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	query :=
		`INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		sub.UserID, sub.PlanID, sub.StartDate, sub.EndDate, string(sub.Status)).Scan(&sub.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sub, nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, userID int64) (*models.Subscription, error) {
	query := subscriptionSelect + `
		 WHERE s.user_id = $1 AND s.status = 'Active'
		 ORDER BY s.start_date DESC
		 LIMIT 1`

	s, err := scanSubscription(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return s, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status models.SubscriptionStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE subscriptions SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) History(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	query := subscriptionSelect + `
		 WHERE s.user_id = $1
		 ORDER BY s.start_date DESC, s.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	subs := []*models.Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return subs, nil
}
