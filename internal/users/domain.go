package users

import (
	"time"

	"github.com/lumina-africa/lumina/internal/access"
)

// Profile is the user-facing account projection.
type Profile struct {
	ID              int64       `json:"id"`
	Email           string      `json:"email"`
	FullName        string      `json:"full_name"`
	Phone           string      `json:"phone,omitempty"`
	City            string      `json:"city,omitempty"`
	Role            access.Role `json:"role"`
	IsActive        bool        `json:"is_active"`
	IsEmailVerified bool        `json:"is_email_verified"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
