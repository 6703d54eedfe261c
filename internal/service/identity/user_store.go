package identity

import (
	"sync"

	"github.com/ghalbir/trading-client/internal/entity"
)

// UserRecord is a registered user plus the credential material the identity
// provider needs. Profiles are what the rest of the system sees.
type UserRecord struct {
	Profile           entity.UserProfile
	PasswordHash      string
	TOTPSecret        string
	PendingTOTPSecret string
}

// UserStore keeps registered users in memory. All account data is
// process-lifetime only; the session credential is the sole durable artifact.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*UserRecord // keyed by email
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*UserRecord)}
}

func (s *UserStore) Create(profile entity.UserProfile, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[profile.Email]; exists {
		return ErrEmailTaken
	}

	s.users[profile.Email] = &UserRecord{
		Profile:      profile,
		PasswordHash: passwordHash,
	}

	return nil
}

func (s *UserStore) Get(email string) (UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[email]
	if !ok {
		return UserRecord{}, false
	}

	return *record, true
}

func (s *UserStore) SetPasswordHash(email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[email]
	if !ok {
		return ErrUserNotFound
	}

	record.PasswordHash = hash

	return nil
}

func (s *UserStore) SetPendingTOTPSecret(email, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[email]
	if !ok {
		return ErrUserNotFound
	}

	record.PendingTOTPSecret = secret

	return nil
}

func (s *UserStore) EnableTwoFactor(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[email]
	if !ok {
		return ErrUserNotFound
	}

	record.TOTPSecret = record.PendingTOTPSecret
	record.PendingTOTPSecret = ""
	record.Profile.TwoFactorEnabled = true

	return nil
}
