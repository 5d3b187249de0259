package driving

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// AuthService handles agent authentication
type AuthService interface {
	// Enabled reports whether agent credentials are configured
	Enabled() bool

	// Authenticate validates credentials and issues a token
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken validates a JWT token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
}
