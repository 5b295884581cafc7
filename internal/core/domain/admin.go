package domain

import (
	"errors"
	"time"
)

// Role is the back-office privilege level of an administrator.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var (
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminExists       = errors.New("admin already exists")
	ErrInvalidRole       = errors.New("invalid role")
	ErrForbidden         = errors.New("access forbidden")
	ErrGateMisconfigured = errors.New("gate misconfigured")
)

// Valid reports whether r is one of the known back-office roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AdminRecord associates a user identity with a role and an active flag.
type AdminRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
