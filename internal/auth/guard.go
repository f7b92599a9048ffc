package auth

import (
	"context"
	"errors"

	"tourbook/internal/core"
)

// ErrSessionRevoked means the token's password version no longer matches
// the stored one. Callers treat it exactly like a missing session.
var ErrSessionRevoked = errors.New("session revoked")

// Guard enforces session integrity. It runs on every session read, not just
// login: a cryptographically valid token is still rejected when the user's
// stored password version has moved past the one embedded at issuance, or
// when the user no longer exists. Checks always hit durable storage; there
// is no process-wide cache to drift.
type Guard struct {
	storage UserStorage
}

func NewGuard(storage UserStorage) *Guard {
	return &Guard{storage: storage}
}

// Check validates the claims against the stored user and returns the user
// when the session remains live.
func (g *Guard) Check(ctx context.Context, claims *Claims) (*core.User, error) {
	user, err := g.storage.GetUserByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return nil, ErrSessionRevoked
	}
	if user.PasswordVersion != claims.PasswordVersion {
		return nil, ErrSessionRevoked
	}
	return user, nil
}
