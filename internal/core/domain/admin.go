package domain

import "time"

type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "super_admin"
)

// Allows reports whether a holder of r satisfies a requirement of required.
func (r AdminRole) Allows(required AdminRole) bool {
	if r == RoleSuperAdmin {
		return true
	}
	return r == required
}

func (r AdminRole) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type AdminUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         AdminRole `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type PrincipalKind string

const (
	PrincipalVoter PrincipalKind = "voter"
	PrincipalAdmin PrincipalKind = "admin"
)

// Principal is the authenticated caller carried in the request context.
type Principal struct {
	Kind    PrincipalKind `json:"kind"`
	Subject string        `json:"sub"`
	Role    AdminRole     `json:"role,omitempty"`
}
