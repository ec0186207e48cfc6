package models

import (
	"fmt"
	"time"
)

// Page bounds a listing.
type Page struct {
	Limit  int
	Offset int
}

// Play is one entry of a listener's play history.
type Play struct {
	ID             int64
	ListenerID     int64
	TrackRef       string
	ListenDuration int
	PlayedAt       time.Time
}

// FollowedArtist is an artist as seen from a follower's list.
type FollowedArtist struct {
	ArtistID       int64
	UserID         int64
	Username       string
	FirstName      *string
	LastName       *string
	Genre          *string
	VerifiedStatus string
	TotalFollowers int64
	FollowedAt     time.Time
}

type ReactableType string

const (
	ReactableSong    ReactableType = "Song"
	ReactableArtwork ReactableType = "Artwork"
)

// ParseReactableType accepts "Song", "Artwork" and "" (no filter).
func ParseReactableType(s string) (ReactableType, error) {
	switch t := ReactableType(s); t {
	case "", ReactableSong, ReactableArtwork:
		return t, nil
	}
	return "", fmt.Errorf("unknown reactable type %q", s)
}

// Reaction is a listener's reaction to a song or an artwork. A listener has
// at most one reaction per target.
type Reaction struct {
	ID            int64
	ListenerID    int64
	ReactableType ReactableType
	ReactableRef  string
	Emotion       string
	ReactedAt     time.Time
}

// ListenerCounts are the activity totals of one listener record.
type ListenerCounts struct {
	Following int64
	Reactions int64
	Plays     int64
}

// UserStats summarises a user's activity. Only the counters that apply to
// Role are set.
type UserStats struct {
	Role      Role
	Listener  *ListenerCounts
	Followers *int64
}
