package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "Active"
	SubscriptionCancelled SubscriptionStatus = "Cancelled"
	SubscriptionExpired   SubscriptionStatus = "Expired"
)

// Plan is a purchasable subscription plan. A nil DurationDays means lifetime.
type Plan struct {
	ID           int64
	Name         string
	Type         Role
	Price        float64
	DurationDays *int
}

// Subscription links a user to a plan for a period of time.
type Subscription struct {
	ID        int64
	UserID    int64
	PlanID    int64
	PlanName  string
	PlanType  Role
	Price     float64
	StartDate time.Time
	EndDate   *time.Time
	Status    SubscriptionStatus
}

// ExpiredAt reports whether s has a finite end date that lies before now.
func (s *Subscription) ExpiredAt(now time.Time) bool {
	return s.EndDate != nil && now.After(*s.EndDate)
}
