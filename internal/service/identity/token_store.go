package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ghalbir/trading-client/internal/constant"
	"github.com/redis/go-redis/v9"
)

// TokenStore tracks live session credentials by token id so that logout can
// revoke a credential before its signature expires.
type TokenStore interface {
	Save(ctx context.Context, tokenID, email string, ttl time.Duration) error
	Load(ctx context.Context, tokenID string) (string, bool, error)
	Delete(ctx context.Context, tokenID string) error
}

type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(cacheDSN string) (*RedisTokenStore, error) {
	if cacheDSN == "" {
		return nil, fmt.Errorf("redis cache_dsn is required")
	}

	options, err := redis.ParseURL(cacheDSN)
	if err != nil {
		return nil, fmt.Errorf("parse redis cache_dsn: %w", err)
	}

	return &RedisTokenStore{client: redis.NewClient(options)}, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, tokenID, email string, ttl time.Duration) error {
	return s.client.Set(ctx, constant.SessionKeyPrefix+tokenID, email, ttl).Err()
}

func (s *RedisTokenStore) Load(ctx context.Context, tokenID string) (string, bool, error) {
	email, err := s.client.Get(ctx, constant.SessionKeyPrefix+tokenID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}

	return email, true, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, tokenID string) error {
	return s.client.Del(ctx, constant.SessionKeyPrefix+tokenID).Err()
}

func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}

// MemoryTokenStore backs tests and single-process development runs.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

type memoryToken struct {
	email     string
	expiresAt time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]memoryToken),
		now:    time.Now,
	}
}

func (s *MemoryTokenStore) Save(_ context.Context, tokenID, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[tokenID] = memoryToken{email: email, expiresAt: s.now().Add(ttl)}

	return nil
}

func (s *MemoryTokenStore) Load(_ context.Context, tokenID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenID]
	if !ok {
		return "", false, nil
	}

	if s.now().After(token.expiresAt) {
		delete(s.tokens, tokenID)
		return "", false, nil
	}

	return token.email, true, nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, tokenID)

	return nil
}
