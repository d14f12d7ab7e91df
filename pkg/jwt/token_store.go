package jwt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodgram/internal/utils"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "foodgram:revoked:"

type (
	// TokenStore remembers revoked token ids until they expire.
	TokenStore interface {
		Revoke(ctx context.Context, jti string, ttl time.Duration) error
		IsRevoked(ctx context.Context, jti string) (bool, error)
	}

	redisTokenStore struct {
		rdb *redis.Client
	}

	memoryTokenStore struct {
		mu      sync.Mutex
		revoked map[string]time.Time
		now     func() time.Time
	}
)

// NewTokenStore uses Redis when REDIS_ADDR is configured and an in-process
// map otherwise.
func NewTokenStore(ctx context.Context) (TokenStore, error) {
	addr := utils.GetConfig("REDIS_ADDR")
	if addr == "" {
		return NewMemoryTokenStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: utils.GetConfig("REDIS_PASSWORD"),
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return NewRedisTokenStore(rdb), nil
}

func NewRedisTokenStore(rdb *redis.Client) TokenStore {
	return &redisTokenStore{rdb: rdb}
}

func (s *redisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return s.rdb.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func (s *redisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *memoryTokenStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[jti] = now.Add(ttl)
	return nil
}

func (s *memoryTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if !exp.After(s.now()) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}
