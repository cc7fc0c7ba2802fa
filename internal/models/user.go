// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an admin user's permission level in the system.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleEditor     Role = "editor"
)

// ValidRole reports whether r is one of the fixed role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin, RoleEditor:
		return true
	}
	return false
}

// AdminUser represents a console user with authentication and optional
// TOTP two-factor fields.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during optional 2FA enrollment
	TOTPEnabled  bool      `json:"totpEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsSuperAdmin returns true if the user has the super_admin role.
func (u *AdminUser) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
