// Package auth handles the single shared password gating access to the
// service. There is no per-user identity: one bcrypt hash, checked and
// replaced wholesale.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// CredentialStore persists the shared password hash. The catalog
// implementations provide database-backed stores; MemoryStore covers tests
// and throwaway deployments.
type CredentialStore interface {
	// PasswordHash returns the stored hash, or "" when no password has
	// been set yet.
	PasswordHash(ctx context.Context) (string, error)

	// SetPasswordHash replaces the stored hash.
	SetPasswordHash(ctx context.Context, hash string) error
}

// HashPassword hashes one plaintext password for persistent storage.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword verifies a plaintext password against a bcrypt hash.
func VerifyPassword(passwordHash, candidate string) bool {
	if strings.TrimSpace(passwordHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(candidate)) == nil
}

// MemoryStore is an in-memory CredentialStore.
type MemoryStore struct {
	mu   sync.RWMutex
	hash string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) PasswordHash(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hash, nil
}

func (s *MemoryStore) SetPasswordHash(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hash = hash
	return nil
}
