package session

import (
	"sync"
	"testing"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestStore_AuthenticateAndClear(t *testing.T) {
	s := NewStore()

	assert.False(t, s.IsAuthenticated())
	_, ok := s.CurrentProfile()
	assert.False(t, ok)

	s.Authenticate(entity.UserProfile{
		ID:        "user123",
		Email:     "user@example.com",
		FullName:  "Demo User",
		KYCStatus: entity.KYCStatusPending,
	})

	assert.True(t, s.IsAuthenticated())
	profile, ok := s.CurrentProfile()
	assert.True(t, ok)
	assert.Equal(t, "user@example.com", profile.Email)

	s.Clear()

	assert.False(t, s.IsAuthenticated())
	profile, ok = s.CurrentProfile()
	assert.False(t, ok)
	assert.Empty(t, profile.ID)
}

func TestStore_ProfilePresentIffAuthenticated(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Authenticate(entity.UserProfile{ID: "user123"})
				s.Clear()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()

	for {
		select {
		case <-done:
			return
		default:
		}

		profile, ok := s.CurrentProfile()
		if ok {
			assert.Equal(t, "user123", profile.ID)
		} else {
			assert.Empty(t, profile.ID)
		}
	}
}
