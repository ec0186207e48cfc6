// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is the identity record owned by the credential store.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the (id, username, role) triple asserted by credentials
// issued for u.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// Identity is the transient, per-request view of an authenticated caller.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
}

// HasRole reports whether the identity holds one of roles.
func (i Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// UserPatch carries a partial profile update. Nil fields are left unchanged.
type UserPatch struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
}

// Empty reports whether no field was provided.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Username == nil && p.FirstName == nil && p.LastName == nil
}
