package models

import (
	"fmt"
	"slices"
)

// Role governs which operations a user may perform.
type Role string

const (
	RoleGuest    Role = "Guest"
	RoleListener Role = "Listener"
	RoleArtist   Role = "Artist"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleGuest, RoleListener, RoleArtist}

func (r Role) Valid() bool {
	return slices.Contains(AllRoles, r)
}

// HasExtension reports whether users holding r own a role-specific
// extension record.
func (r Role) HasExtension() bool {
	return r == RoleListener || r == RoleArtist
}

func (r Role) String() string { return string(r) }

// ParseRole converts s into a Role. An empty string yields RoleGuest.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleGuest, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
