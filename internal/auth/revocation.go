package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers ended sessions until their tokens expire.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type memoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationStore keeps revoked session ids in process memory.
func NewMemoryRevocationStore() RevocationStore {
	return &memoryRevocationStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *memoryRevocationStore) Revoke(_ context.Context, sessionID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	if until.After(now) {
		s.revoked[sessionID] = until
	}
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[sessionID]
	if !ok {
		return false, nil
	}
	return exp.After(s.now()), nil
}

const redisRevokedPrefix = "helpdesk:revoked:"

type redisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore shares revoked session ids through Redis keys with a TTL.
func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	return &redisRevocationStore{client: client}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, redisRevokedPrefix+sessionID, "1", ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, redisRevokedPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
