package auth

import (
	"time"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
)

// User represents a registered account.
type User struct {
	ID              int64
	Email           string
	PasswordHash    string
	Role            access.Role
	IsActive        bool
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Identity maps the account to the boundary identity shape.
func (u *User) Identity() *identity.Identity {
	return &identity.Identity{
		ID:              u.ID,
		Email:           u.Email,
		Role:            u.Role,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
	}
}
