package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/logging"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/dmitrijs2005/soundhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soundhub/internal/server/validation"
)

// SubscriptionService sells plans. A plan's type is the role it grants, so
// purchase, cancellation and expiry all drive the role state machine.
type SubscriptionService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewSubscriptionService(store dbx.Store, m repomanager.RepositoryManager, logger logging.Logger) *SubscriptionService {
	return &SubscriptionService{
		store:       store,
		repomanager: m,
		logger:      logger,
		now:         time.Now,
	}
}

// SubscriptionStatus is the outcome of a status check. User is set when the
// check changed the role, so callers can refresh the credential.
type SubscriptionStatus struct {
	Active       bool
	Status       models.SubscriptionStatus
	Subscription *models.Subscription
	User         *models.User
}

func (s *SubscriptionService) Plans(ctx context.Context) ([]*models.Plan, error) {
	plans, err := s.repomanager.Subscriptions(s.store.Conn()).ListPlans(ctx)
	if err != nil {
		return nil, internalError("list plans", err)
	}
	return plans, nil
}

// Purchase replaces any active subscription with a new one for the plan and
// moves the user to the plan's role.
func (s *SubscriptionService) Purchase(ctx context.Context, userID int64, in PurchaseInput) (*models.Subscription, *models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, nil, err
	}

	var (
		sub  *models.Subscription
		user *models.User
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Subscriptions(tx)

		plan, err := repo.GetPlan(ctx, in.PlanID)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrPlanNotFound
		} else if err != nil {
			return err
		}

		if _, err := s.repomanager.Users(tx).GetByID(ctx, userID); err != nil {
			return err
		}

		if current, err := repo.FindActive(ctx, userID); err == nil {
			if err := repo.SetStatus(ctx, current.ID, models.SubscriptionCancelled); err != nil {
				return err
			}
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		start := s.now().UTC()
		var end *time.Time
		if plan.DurationDays != nil {
			t := start.AddDate(0, 0, *plan.DurationDays)
			end = &t
		}

		sub, err = repo.Create(ctx, &models.Subscription{
			UserID:    userID,
			PlanID:    plan.ID,
			PlanName:  plan.Name,
			PlanType:  plan.Type,
			Price:     plan.Price,
			StartDate: start,
			EndDate:   end,
			Status:    models.SubscriptionActive,
		})
		if err != nil {
			return err
		}

		user, err = transitionRole(ctx, s.repomanager, tx, userID, plan.Type, false)
		return err
	})
	if err != nil {
		return nil, nil, internalError("purchase", err)
	}

	s.logger.Info(ctx, "subscription purchased", "user_id", userID, "plan_id", in.PlanID)
	return sub, user, nil
}

// Current returns the active subscription or common.ErrNotFound.
func (s *SubscriptionService) Current(ctx context.Context, userID int64) (*models.Subscription, error) {
	sub, err := s.repomanager.Subscriptions(s.store.Conn()).FindActive(ctx, userID)
	if err != nil {
		return nil, internalError("current subscription", err)
	}
	return sub, nil
}

func (s *SubscriptionService) History(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	subs, err := s.repomanager.Subscriptions(s.store.Conn()).History(ctx, userID)
	if err != nil {
		return nil, internalError("subscription history", err)
	}
	return subs, nil
}

// Cancel ends the active subscription and downgrades the user to Guest.
func (s *SubscriptionService) Cancel(ctx context.Context, userID int64) (*models.User, error) {
	var user *models.User
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Subscriptions(tx)
		sub, err := repo.FindActive(ctx, userID)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNoActiveSubscription
		} else if err != nil {
			return err
		}
		if err := repo.SetStatus(ctx, sub.ID, models.SubscriptionCancelled); err != nil {
			return err
		}
		user, err = transitionRole(ctx, s.repomanager, tx, userID, models.RoleGuest, false)
		return err
	})
	if err != nil {
		return nil, internalError("cancel subscription", err)
	}

	s.logger.Info(ctx, "subscription cancelled", "user_id", userID)
	return user, nil
}

// Status reports whether the user has an active subscription. A subscription
// past its end date is marked Expired and the user falls back to Guest.
func (s *SubscriptionService) Status(ctx context.Context, userID int64) (*SubscriptionStatus, error) {
	out := &SubscriptionStatus{}
	err := s.store.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Subscriptions(tx)
		sub, err := repo.FindActive(ctx, userID)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		} else if err != nil {
			return err
		}

		out.Subscription = sub
		if !sub.ExpiredAt(s.now()) {
			out.Active = true
			out.Status = models.SubscriptionActive
			return nil
		}

		if err := repo.SetStatus(ctx, sub.ID, models.SubscriptionExpired); err != nil {
			return err
		}
		sub.Status = models.SubscriptionExpired
		out.Status = models.SubscriptionExpired
		out.User, err = transitionRole(ctx, s.repomanager, tx, userID, models.RoleGuest, false)
		return err
	})
	if err != nil {
		return nil, internalError("subscription status", err)
	}

	if out.Status == models.SubscriptionExpired {
		s.logger.Info(ctx, "subscription expired", "user_id", userID)
	}
	return out, nil
}
