package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourbook/internal/core"
)

// memStore is an in-memory UserStorage for tests.
type memStore struct {
	byID    map[string]*core.User
	byEmail map[string]*core.User
}

func newMemStore() *memStore {
	return &memStore{
		byID:    make(map[string]*core.User),
		byEmail: make(map[string]*core.User),
	}
}

func (s *memStore) CreateUser(_ context.Context, u *core.User) error {
	if _, ok := s.byEmail[u.Email]; ok {
		return errors.New("duplicate email")
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byEmail[u.Email] = &cp
	return nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetUserByID(_ context.Context, id string) (*core.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := s.byID[id]
	if !ok {
		return errors.New("not found")
	}
	u.PasswordHash = hash
	u.PasswordVersion++
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	a := NewPasswordAuthenticator(store)

	user, err := a.Register(ctx, "Aisha@Example.com", "Aisha", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "aisha@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.PasswordVersion != 0 {
		t.Errorf("passwordVersion = %d, want 0", user.PasswordVersion)
	}
	if user.PasswordHash == "secret1" {
		t.Error("password stored in plaintext")
	}

	if _, err := a.Register(ctx, "aisha@example.com", "Aisha", "secret1"); err != ErrEmailExists {
		t.Errorf("duplicate Register() error = %v, want ErrEmailExists", err)
	}
	if _, err := a.Register(ctx, "b@example.com", "B", "short"); err != ErrPasswordTooWeak {
		t.Errorf("weak Register() error = %v, want ErrPasswordTooWeak", err)
	}

	if _, err := a.Authenticate(ctx, "aisha@example.com", "secret1"); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
	if _, err := a.Authenticate(ctx, "aisha@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("bad password Authenticate() error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "secret1"); err != ErrInvalidCredentials {
		t.Errorf("unknown email Authenticate() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	a := NewPasswordAuthenticator(store)

	user, err := a.Register(ctx, "aisha@example.com", "Aisha", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	oldHash := store.byID[user.ID].PasswordHash

	tests := []struct {
		name                  string
		current, new, confirm string
		want                  error
	}{
		{"mismatched confirm", "secret1", "newsecret", "different", ErrPasswordMismatch},
		{"too weak", "secret1", "short", "short", ErrPasswordTooWeak},
		{"wrong current", "nope", "newsecret", "newsecret", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.ChangePassword(ctx, user.ID, tt.current, tt.new, tt.confirm); err != tt.want {
				t.Errorf("ChangePassword() error = %v, want %v", err, tt.want)
			}
			// Failed attempts must leave the stored record untouched.
			u := store.byID[user.ID]
			if u.PasswordVersion != 0 || u.PasswordHash != oldHash {
				t.Errorf("stored user mutated by failed change: version=%d", u.PasswordVersion)
			}
		})
	}

	if err := a.ChangePassword(ctx, user.ID, "secret1", "newsecret", "newsecret"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	u := store.byID[user.ID]
	if u.PasswordVersion != 1 {
		t.Errorf("passwordVersion = %d, want 1", u.PasswordVersion)
	}
	if u.PasswordHash == oldHash {
		t.Error("hash unchanged after successful change")
	}
	if _, err := a.Authenticate(ctx, "aisha@example.com", "newsecret"); err != nil {
		t.Errorf("Authenticate() with new password error = %v", err)
	}
}

func TestGuardInvalidatesOldSessions(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	a := NewPasswordAuthenticator(store)
	jm := NewJWTManager("test-secret-key-0123456789abcdef", time.Hour)
	guard := NewGuard(store)

	user, err := a.Register(ctx, "aisha@example.com", "Aisha", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	oldToken, err := jm.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	claims, err := jm.Validate(oldToken)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if _, err := guard.Check(ctx, claims); err != nil {
		t.Fatalf("Check() before change error = %v", err)
	}

	if err := a.ChangePassword(ctx, user.ID, "secret1", "newsecret", "newsecret"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	// The old token still verifies cryptographically but the guard now
	// rejects it on version mismatch.
	claims, err = jm.Validate(oldToken)
	if err != nil {
		t.Fatalf("Validate() after change error = %v", err)
	}
	if _, err := guard.Check(ctx, claims); err != ErrSessionRevoked {
		t.Errorf("Check() with stale token error = %v, want ErrSessionRevoked", err)
	}

	// A freshly issued token picks up the new version and is accepted.
	fresh, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	newToken, err := jm.Generate(fresh)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	claims, err = jm.Validate(newToken)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if _, err := guard.Check(ctx, claims); err != nil {
		t.Errorf("Check() with fresh token error = %v", err)
	}
}

func TestGuardUnknownUser(t *testing.T) {
	guard := NewGuard(newMemStore())
	claims := &Claims{UserID: "ghost", PasswordVersion: 0}
	if _, err := guard.Check(context.Background(), claims); err != ErrSessionRevoked {
		t.Errorf("Check() error = %v, want ErrSessionRevoked", err)
	}
}

func TestJWTRejectsTampering(t *testing.T) {
	jm := NewJWTManager("test-secret-key-0123456789abcdef", time.Hour)
	other := NewJWTManager("another-secret-key-fedcba98765432", time.Hour)

	user := &core.User{ID: "u1", Email: "a@example.com", PasswordVersion: 3}
	token, err := jm.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := jm.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != "u1" || claims.PasswordVersion != 3 {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := other.Validate(token); err == nil {
		t.Error("token accepted with wrong key")
	}
	if _, err := jm.Validate(token + "x"); err == nil {
		t.Error("mangled token accepted")
	}
}

func TestJWTExpiry(t *testing.T) {
	jm := NewJWTManager("test-secret-key-0123456789abcdef", -time.Minute)
	token, err := jm.Generate(&core.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := jm.Validate(token); err == nil {
		t.Error("expired token accepted")
	}
}
