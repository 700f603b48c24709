package models

type Role string

const (
	RoleGuest  Role = "guest"
	RoleRenter Role = "renter"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

// Principal is the authenticated identity attached to one request. It is
// derived fresh from a verified credential and never persisted.
type Principal struct {
	UserID string
	Roles  []Role
}

func (p Principal) HasRole(r Role) bool {
	for _, have := range p.Roles {
		if have == r {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
