package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/dmitrijs2005/soundhub/internal/dbx"
	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

type subscriptionRepo struct {
	store *Store
	db    dbx.DBTX
}

func (r *subscriptionRepo) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	var plans []*models.Plan
	err := r.store.with(ctx, r.db, func(st *state) error {
		for _, p := range st.plans {
			c := *p
			plans = append(plans, &c)
		}
		return nil
	})
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, err
}

func (r *subscriptionRepo) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	var out *models.Plan
	err := r.store.with(ctx, r.db, func(st *state) error {
		p, ok := st.plans[id]
		if !ok {
			return common.ErrNotFound
		}
		c := *p
		out = &c
		return nil
	})
	return out, err
}

func (r *subscriptionRepo) Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	err := r.store.with(ctx, r.db, func(st *state) error {
		if err := st.requireUser(sub.UserID); err != nil {
			return err
		}
		plan, ok := st.plans[sub.PlanID]
		if !ok {
			return common.ErrNotFound
		}
		st.nextSub++
		sub.ID = st.nextSub
		sub.PlanName = plan.Name
		sub.PlanType = plan.Type
		sub.Price = plan.Price
		st.subs[sub.ID] = copySubscription(sub)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// userSubs returns copies of userID's subscriptions, newest first.
func (st *state) userSubs(userID int64, status models.SubscriptionStatus) []*models.Subscription {
	var out []*models.Subscription
	for _, s := range st.subs {
		if s.UserID == userID && (status == "" || s.Status == status) {
			out = append(out, copySubscription(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out
}

func (r *subscriptionRepo) FindActive(ctx context.Context, userID int64) (*models.Subscription, error) {
	var out *models.Subscription
	err := r.store.with(ctx, r.db, func(st *state) error {
		active := st.userSubs(userID, models.SubscriptionActive)
		if len(active) == 0 {
			return common.ErrNotFound
		}
		out = active[0]
		return nil
	})
	return out, err
}

func (r *subscriptionRepo) SetStatus(ctx context.Context, id int64, status models.SubscriptionStatus) error {
	return r.store.with(ctx, r.db, func(st *state) error {
		s, ok := st.subs[id]
		if !ok {
			return common.ErrNotFound
		}
		s.Status = status
		return nil
	})
}

func (r *subscriptionRepo) History(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	out := []*models.Subscription{}
	err := r.store.with(ctx, r.db, func(st *state) error {
		out = append(out, st.userSubs(userID, "")...)
		return nil
	})
	return out, err
}
