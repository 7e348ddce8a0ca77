// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"sync"

	"github.com/quillpress/quillctl/internal/domain/session"
)

// CredentialStore implements session.CredentialStore with a single in-memory
// slot. Thread-safe for concurrent access. For development/testing only.
type CredentialStore struct {
	mu   sync.RWMutex
	sess *session.Session
}

// NewCredentialStore creates an empty in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Load returns the stored session, or (nil, nil) when the slot is empty.
func (s *CredentialStore) Load(ctx context.Context) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Return a copy to prevent mutation
	return s.sess.Clone(), nil
}

// Save replaces the slot contents.
func (s *CredentialStore) Save(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = sess.Clone()
	return nil
}

// Clear empties the slot. Safe to call when already empty.
func (s *CredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

// Compile-time interface verification.
var _ session.CredentialStore = (*CredentialStore)(nil)
