package models

// VerifiedStatusPending is the verification status of a freshly created
// artist record.
const VerifiedStatusPending = "Pending"

// ListenerProfile is the extension record of a Listener.
type ListenerProfile struct {
	ID            int64
	UserID        int64
	Preference    *string
	FavoriteGenre *string
}

// ArtistProfile is the extension record of an Artist.
type ArtistProfile struct {
	ID             int64
	UserID         int64
	Genre          *string
	VerifiedStatus string
	TotalFollowers int64
	LabelID        *int64
}

// Profile is a user together with the extension record of the active role,
// if any.
type Profile struct {
	User     *User
	Listener *ListenerProfile
	Artist   *ArtistProfile
}
