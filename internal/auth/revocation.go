package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/staffhub/internal/cache"
	"github.com/redis/go-redis/v9"
)

var ErrEmptyTokenID = errors.New("empty token id")

// RevocationStore is the sign-out denylist. Entries only need to live until
// the token they name would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type MemoryRevocations struct {
	entries *cache.Cache
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		entries: cache.New(time.Hour),
		now:     time.Now,
	}
}

func (s *MemoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if strings.TrimSpace(tokenID) == "" {
		return ErrEmptyTokenID
	}
	s.entries.SetWithTTL(tokenID, struct{}{}, until.Sub(s.now()))
	return nil
}

func (s *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := s.entries.Get(tokenID)
	return ok, nil
}

// Sweep drops denylist entries whose tokens have expired.
func (s *MemoryRevocations) Sweep() int {
	return s.entries.Sweep()
}

type RedisRevocations struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{
		client: client,
		prefix: "staffhub:session:revoked:",
		now:    time.Now,
	}
}

func (s *RedisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if strings.TrimSpace(tokenID) == "" {
		return ErrEmptyTokenID
	}

	ttl := until.Sub(s.now())
	if ttl <= 0 {
		// already expired, nothing left to deny
		return nil
	}

	return s.client.Set(ctx, s.prefix+tokenID, "1", ttl).Err()
}

func (s *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if strings.TrimSpace(tokenID) == "" {
		return false, nil
	}

	n, err := s.client.Exists(ctx, s.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
