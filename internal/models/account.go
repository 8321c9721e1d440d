package models

import (
	"time"

	"cuotas/api/internal/authz"
)

// Account is a login identity. Accounts are deactivated, never deleted,
// while historical records reference them.
type Account struct {
	ID           int64
	Email        string
	PasswordHash []byte
	Name         string
	Role         authz.Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
