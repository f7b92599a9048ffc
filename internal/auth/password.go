// Package auth implements password credentials and session integrity for
// tourbook users.
//
// Sessions are JWTs carrying the user's password version at issuance time.
// The guard re-reads the stored version on every session check, so a
// password change invalidates every outstanding token without a revocation
// list.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tourbook/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooWeak    = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// MinPasswordLength matches the original signup and change-password rules.
const MinPasswordLength = 6

// UserStorage is the durable user store the authenticator and guard read
// from and write to.
type UserStorage interface {
	CreateUser(ctx context.Context, user *core.User) error
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	GetUserByID(ctx context.Context, id string) (*core.User, error)
	// UpdatePassword stores the new hash and increments password_version by
	// exactly 1 in a single atomic write.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// PasswordAuthenticator implements email/password authentication on bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
}

func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage}
}

// ValidateCredential checks the minimum password requirements.
func (a *PasswordAuthenticator) ValidateCredential(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooWeak
	}
	return nil
}

// Register creates a new user with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, name, password string) (*core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := a.ValidateCredential(password); err != nil {
		return nil, err
	}

	if existing, err := a.storage.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &core.User{
		ID:              uuid.New().String(),
		Email:           email,
		Name:            name,
		PasswordHash:    string(hash),
		PasswordVersion: 0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies email and password, returning the user when valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*core.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword rotates the user's password. Validation order: confirmation
// mismatch, weak password, wrong current password. On success the stored
// hash is replaced and password_version is bumped, which invalidates every
// previously issued session token on its next use. The caller's own session
// is not refreshed here; it must re-login or mint a new token.
func (a *PasswordAuthenticator) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if err := a.ValidateCredential(newPassword); err != nil {
		return err
	}

	user, err := a.storage.GetUserByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := a.storage.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
