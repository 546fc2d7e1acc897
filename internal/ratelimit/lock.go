package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseIfOwner deletes the key only while it still holds the caller's token.
var releaseIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var (
	errLockNotConfigured = errors.New("ratelimit: lock client not configured")
	errLockKeyEmpty      = errors.New("ratelimit: lock key is empty")
	errLockTTL           = errors.New("ratelimit: lock ttl must be positive")
)

// Locker hands out a single named lease with a fixed TTL.
type Locker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewLocker(client *redis.Client, key string, ttl time.Duration) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client, key: strings.TrimSpace(key), ttl: ttl}
}

// Acquire returns a lease token and whether the lease was granted.
func (l *Locker) Acquire(ctx context.Context) (string, bool, error) {
	switch {
	case l == nil || l.client == nil:
		return "", false, errLockNotConfigured
	case l.key == "":
		return "", false, errLockKeyEmpty
	case l.ttl <= 0:
		return "", false, errLockTTL
	}

	token := uuid.NewString()
	granted, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, granted, nil
}

func (l *Locker) Release(ctx context.Context, token string) error {
	if l == nil || l.client == nil || token == "" {
		return nil
	}
	return releaseIfOwner.Run(ctx, l.client, []string{l.key}, token).Err()
}
