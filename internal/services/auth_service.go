package services

import (
	"context"

	"tourbook/internal/auth"
	"tourbook/internal/core"
)

// AuthService bundles registration, login and session integrity behind one
// dependency for the HTTP layer.
type AuthService struct {
	authenticator *auth.PasswordAuthenticator
	tokens        *auth.JWTManager
	guard         *auth.Guard
}

func NewAuthService(storage auth.UserStorage, tokens *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: auth.NewPasswordAuthenticator(storage),
		tokens:        tokens,
		guard:         auth.NewGuard(storage),
	}
}

// Signup registers a user and issues a session token.
func (s *AuthService) Signup(ctx context.Context, email, name, password string) (*core.User, string, error) {
	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChangePassword rotates the password, revoking all outstanding sessions.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) error {
	return s.authenticator.ChangePassword(ctx, userID, current, newPassword, confirm)
}

// CheckSession validates token claims against durable state.
func (s *AuthService) CheckSession(ctx context.Context, claims *auth.Claims) (*core.User, error) {
	return s.guard.Check(ctx, claims)
}

// ParseToken verifies a raw token string and returns its claims.
func (s *AuthService) ParseToken(token string) (*auth.Claims, error) {
	return s.tokens.Validate(token)
}
