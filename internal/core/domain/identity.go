package domain

// Identity is the verified caller attached to a request by the auth middleware.
type Identity struct {
	UserID   int64
	Username string
	Roles    []string
	// Scheme is the credential type that produced the identity: "bearer" or "basic".
	Scheme string
}

// HasRole reports whether the caller holds role, with or without the ROLE_ prefix.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	return hasRole(i.Roles, role)
}

// IdentityFromUser derives a request identity from a stored user.
func IdentityFromUser(u *User, scheme string) *Identity {
	return &Identity{
		UserID:   u.ID,
		Username: u.Username,
		Roles:    NormalizeRoles(u.Roles),
		Scheme:   scheme,
	}
}
