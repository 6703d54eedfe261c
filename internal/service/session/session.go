package session

import (
	"sync"

	"github.com/ghalbir/trading-client/internal/entity"
)

// Store holds the authentication flag and the current user profile. Both
// change together under one lock, so a reader never observes a profile
// without the flag or the flag without a profile.
type Store struct {
	mu            sync.RWMutex
	authenticated bool
	profile       entity.UserProfile
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Authenticate(profile entity.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = true
	s.profile = profile
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = false
	s.profile = entity.UserProfile{}
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.authenticated
}

func (s *Store) CurrentProfile() (entity.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profile, s.authenticated
}
