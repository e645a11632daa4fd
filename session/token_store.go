package session

import (
	"sync"
	"time"
)

// TokenStore holds the current access token and its expiry in process memory.
// The token is never written to durable storage; when the process exits, the
// session has to be restored through the refresh credential.
type TokenStore struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenStore creates an empty TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Set replaces the stored token and computes its absolute expiry from now.
func (s *TokenStore) Set(token string, expiresIn time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = time.Now().Add(expiresIn)
}

// Get returns the current access token, or false when no token is held.
func (s *TokenStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// ExpiresAt returns the absolute expiry of the current token, or false when
// no token is held.
func (s *TokenStore) ExpiresAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt, s.token != ""
}

// Clear removes the token and its expiry.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}
