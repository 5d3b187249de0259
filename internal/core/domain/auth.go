package domain

import "time"

// Role is the permission level of a concierge agent
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// AuthContext contains authenticated agent info for request context
type AuthContext struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin checks if the authenticated agent is an admin
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful authentication
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims represents the JWT token payload
type TokenClaims struct {
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
