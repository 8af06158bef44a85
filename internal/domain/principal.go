package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleSuperAdmin   Role = "Super Admin"
	RoleCustomerCare Role = "Customer care"
)

// ParseRole maps the backend's role claim onto a known role. Hyphenated and
// lower-case spellings seen in older tokens are accepted.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", " ")) {
	case "admin":
		return RoleAdmin, true
	case "super admin", "superadmin":
		return RoleSuperAdmin, true
	case "customer care", "customercare":
		return RoleCustomerCare, true
	}
	return Role(s), false
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin || r == RoleCustomerCare
}

// Principal is the signed-in operator. A principal whose token expired is
// treated as absent everywhere.
type Principal struct {
	ID          string
	DisplayName string
	Email       string
	Token       string
	Role        Role
	ExpiresAt   time.Time
}

func (p *Principal) Expired(now time.Time) bool {
	return p.ExpiresAt.IsZero() || !p.ExpiresAt.After(now)
}

// Active reports whether p may use the dashboard at now.
func (p *Principal) Active(now time.Time) bool {
	return p != nil && p.Token != "" && p.Role.Valid() && !p.Expired(now)
}
