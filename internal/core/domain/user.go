package domain

import (
	"slices"
	"strings"
	"time"
)

const (
	// RoleUser is assigned to every account created without explicit roles.
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"

	// AuthorityAdmin is the capability required by admin-only routes.
	AuthorityAdmin = "ADMIN"

	rolePrefix = "ROLE_"
)

// User is the persisted account record. PasswordHash only ever holds bcrypt output.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy so stores never share the Roles backing array with callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}

// HasRole reports whether the user holds role, either verbatim or with the ROLE_ prefix.
func (u *User) HasRole(role string) bool {
	return hasRole(u.Roles, role)
}

// NormalizeRoles trims, de-duplicates and sorts roles, dropping blank entries.
// The result behaves as a set; nil is returned when nothing survives.
func NormalizeRoles(roles []string) []string {
	var out []string
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

func hasRole(roles []string, role string) bool {
	want := strings.TrimPrefix(role, rolePrefix)
	for _, r := range roles {
		if strings.EqualFold(strings.TrimPrefix(r, rolePrefix), want) {
			return true
		}
	}
	return false
}
