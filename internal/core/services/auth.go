package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// AgentCredential is one configured agent account
type AgentCredential struct {
	Email        string
	PasswordHash string
	Role         domain.Role
}

// authService implements the AuthService interface
type authService struct {
	agents      map[string]AgentCredential
	authAdapter driven.AuthAdapter
	tokenTTL    time.Duration
}

// NewAuthService creates a new AuthService for the configured agents.
// Agents without an email or hash are ignored.
func NewAuthService(authAdapter driven.AuthAdapter, tokenTTL time.Duration, agents ...AgentCredential) driving.AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	byEmail := make(map[string]AgentCredential, len(agents))
	for _, a := range agents {
		if a.Email == "" || a.PasswordHash == "" {
			continue
		}
		if a.Role == "" {
			a.Role = domain.RoleAgent
		}
		byEmail[strings.ToLower(a.Email)] = a
	}
	return &authService{
		agents:      byEmail,
		authAdapter: authAdapter,
		tokenTTL:    tokenTTL,
	}
}

// Enabled reports whether any agent is configured
func (s *authService) Enabled() bool {
	return len(s.agents) > 0
}

// Authenticate validates credentials and issues a token
func (s *authService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	agent, ok := s.agents[strings.ToLower(req.Email)]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.authAdapter.VerifyPassword(req.Password, agent.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	claims := &domain.TokenClaims{
		Email:     agent.Email,
		Role:      agent.Role,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if errors.Is(err, domain.ErrTokenExpired) {
		return nil, domain.ErrTokenExpired
	}
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}

	// Tokens of removed agents stop working
	if _, ok := s.agents[strings.ToLower(claims.Email)]; !ok {
		return nil, domain.ErrUnauthorized
	}

	return &domain.AuthContext{
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
