package httpapi

import (
	"time"

	"github.com/dmitrijs2005/soundhub/internal/server/models"
)

type userJSON struct {
	UserID    int64      `json:"user_id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toUser(u *models.User) userJSON {
	out := userJSON{
		UserID:    u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	}
	if !u.CreatedAt.IsZero() {
		out.CreatedAt = &u.CreatedAt
	}
	if !u.UpdatedAt.IsZero() {
		out.UpdatedAt = &u.UpdatedAt
	}
	return out
}

type identityJSON struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type listenerJSON struct {
	ListenerID    int64   `json:"listener_id"`
	Preference    *string `json:"preference"`
	FavoriteGenre *string `json:"favorite_genre"`
}

func toListener(p *models.ListenerProfile) *listenerJSON {
	if p == nil {
		return nil
	}
	return &listenerJSON{ListenerID: p.ID, Preference: p.Preference, FavoriteGenre: p.FavoriteGenre}
}

type artistJSON struct {
	ArtistID       int64   `json:"artist_id"`
	Genre          *string `json:"genre"`
	VerifiedStatus string  `json:"verified_status"`
	TotalFollowers int64   `json:"total_followers"`
	LabelID        *int64  `json:"label_id"`
}

func toArtist(p *models.ArtistProfile) *artistJSON {
	if p == nil {
		return nil
	}
	return &artistJSON{
		ArtistID:       p.ID,
		Genre:          p.Genre,
		VerifiedStatus: p.VerifiedStatus,
		TotalFollowers: p.TotalFollowers,
		LabelID:        p.LabelID,
	}
}

type profileJSON struct {
	userJSON
	Listener *listenerJSON `json:"listener,omitempty"`
	Artist   *artistJSON   `json:"artist,omitempty"`
}

type authResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token,omitempty"`
	User    userJSON `json:"user"`
}

type planJSON struct {
	PlanID       int64   `json:"plan_id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Price        float64 `json:"price"`
	DurationDays *int    `json:"duration_days"`
}

func toPlan(p *models.Plan) planJSON {
	return planJSON{PlanID: p.ID, Name: p.Name, Type: string(p.Type), Price: p.Price, DurationDays: p.DurationDays}
}

type subscriptionJSON struct {
	SubscriptionID int64      `json:"subscription_id"`
	PlanID         int64      `json:"plan_id"`
	PlanName       string     `json:"plan_name"`
	PlanType       string     `json:"plan_type"`
	Price          float64    `json:"price"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Status         string     `json:"status"`
}

func toSubscription(s *models.Subscription) *subscriptionJSON {
	if s == nil {
		return nil
	}
	return &subscriptionJSON{
		SubscriptionID: s.ID,
		PlanID:         s.PlanID,
		PlanName:       s.PlanName,
		PlanType:       string(s.PlanType),
		Price:          s.Price,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		Status:         string(s.Status),
	}
}

type statsJSON struct {
	Role           string `json:"role"`
	FollowingCount *int64 `json:"following_count,omitempty"`
	ReactionCount  *int64 `json:"reaction_count,omitempty"`
	PlayCount      *int64 `json:"play_count,omitempty"`
	FollowersCount *int64 `json:"followers_count,omitempty"`
}

func toStats(s *models.UserStats) statsJSON {
	out := statsJSON{Role: string(s.Role), FollowersCount: s.Followers}
	if l := s.Listener; l != nil {
		out.FollowingCount = &l.Following
		out.ReactionCount = &l.Reactions
		out.PlayCount = &l.Plays
	}
	return out
}

type playJSON struct {
	HistoryID      int64     `json:"history_id"`
	TrackRef       string    `json:"track_ref"`
	ListenDuration int       `json:"listen_duration"`
	PlayedAt       time.Time `json:"played_at"`
}

func toPlay(p *models.Play) playJSON {
	return playJSON{HistoryID: p.ID, TrackRef: p.TrackRef, ListenDuration: p.ListenDuration, PlayedAt: p.PlayedAt}
}

type followedArtistJSON struct {
	ArtistID       int64     `json:"artist_id"`
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username"`
	FirstName      *string   `json:"first_name"`
	LastName       *string   `json:"last_name"`
	Genre          *string   `json:"genre"`
	VerifiedStatus string    `json:"verified_status"`
	TotalFollowers int64     `json:"total_followers"`
	FollowedDate   time.Time `json:"followed_date"`
}

func toFollowedArtist(a *models.FollowedArtist) followedArtistJSON {
	return followedArtistJSON{
		ArtistID:       a.ArtistID,
		UserID:         a.UserID,
		Username:       a.Username,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Genre:          a.Genre,
		VerifiedStatus: a.VerifiedStatus,
		TotalFollowers: a.TotalFollowers,
		FollowedDate:   a.FollowedAt,
	}
}

type reactionJSON struct {
	ReactionID   int64     `json:"reaction_id"`
	Type         string    `json:"type"`
	ReactableRef string    `json:"reactable_ref"`
	Emotion      string    `json:"emotion"`
	ReactedAt    time.Time `json:"reacted_at"`
}

func toReaction(r *models.Reaction) reactionJSON {
	return reactionJSON{
		ReactionID:   r.ID,
		Type:         string(r.ReactableType),
		ReactableRef: r.ReactableRef,
		Emotion:      r.Emotion,
		ReactedAt:    r.ReactedAt,
	}
}

// mapSlice converts every element with fn; the result is never nil.
func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
