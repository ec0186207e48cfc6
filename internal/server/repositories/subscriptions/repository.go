package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

type Repository interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
	Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	// FindActive returns the most recent Active subscription of userID.
	FindActive(ctx context.Context, userID int64) (*models.Subscription, error)
	SetStatus(ctx context.Context, id int64, status models.SubscriptionStatus) error
	// History lists every subscription of userID, newest first.
	History(ctx context.Context, userID int64) ([]*models.Subscription, error)
}
