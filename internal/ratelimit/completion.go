package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/pulse/internal/config"
	"go.uber.org/zap"
)

const (
	keyCompletionInvitation = "pulse:completion:invitation:%s"
	keyBootstrapLock        = "pulse:lock:bootstrap"

	bootstrapLockTTL = 30 * time.Second
)

// CompletionLimiter throttles completion submissions per invitation. A nil or
// disabled limiter allows everything.
type CompletionLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewClient(cfg config.Config) (*redis.Client, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	}), nil
}

func NewCompletionLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) (*CompletionLimiter, error) {
	if client == nil {
		return nil, nil
	}
	limitCfg := cfg.RateLimit
	if limitCfg.CompletionRate <= 0 || limitCfg.CompletionBurst <= 0 {
		return nil, errors.New("completion rate limit must be positive")
	}

	log.Named("ratelimit").Info("completion rate limit enabled",
		zap.Float64("rate", limitCfg.CompletionRate),
		zap.Int("burst", limitCfg.CompletionBurst),
	)
	return &CompletionLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client, keyBootstrapLock, bootstrapLockTTL),
		rate:    limitCfg.CompletionRate,
		burst:   limitCfg.CompletionBurst,
	}, nil
}

func (l *CompletionLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *CompletionLimiter) AllowInvitation(ctx context.Context, invitationID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCompletionInvitation, strings.TrimSpace(invitationID)), l.rate, l.burst)
}

// TryLockBootstrap guards startup seeding across replicas. Without redis the
// lock is always granted.
func (l *CompletionLimiter) TryLockBootstrap(ctx context.Context) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.Acquire(ctx)
}

func (l *CompletionLimiter) ReleaseBootstrap(ctx context.Context, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, token)
}
