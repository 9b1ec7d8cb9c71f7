package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList tracks refresh credential jti values that have been
// rotated away or logged out. Entries only need to live until the
// credential's natural expiry.
type RevocationList interface {
	// Revoke adds a jti if absent. The boolean reports whether this call
	// performed the revocation; false means the jti was already revoked,
	// which refresh rotation treats as a lost race.
	Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	// IsRevoked reports membership.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revocationKeyPrefix = "auth:revoked:"

// RedisRevocationList is the Redis-backed revocation list used in
// production. SetNX gives the atomic add-if-absent rotation needs; key TTL
// handles garbage collection after natural expiry.
type RedisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList wraps the client.
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		// Already past natural expiry; nothing to track, and the entry
		// counts as freshly revoked for the caller.
		return true, nil
	}
	return r.client.SetNX(ctx, revocationKeyPrefix+jti, "1", ttl).Result()
}

func (r *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevocationList is an in-process implementation for tests and
// storeless development runs.
type MemoryRevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationList builds an empty list.
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	if _, exists := m.entries[jti]; exists {
		return false, nil
	}
	m.entries[jti] = m.now().Add(ttl)
	return true, nil
}

func (m *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	_, exists := m.entries[jti]
	return exists, nil
}

func (m *MemoryRevocationList) prune() {
	now := m.now()
	for jti, expiry := range m.entries {
		if now.After(expiry) {
			delete(m.entries, jti)
		}
	}
}
