package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/pulse/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDisabledLimiterAllows(t *testing.T) {
	client, err := NewClient(config.Config{})
	require.NoError(t, err)
	assert.Nil(t, client)

	limiter, err := NewCompletionLimiter(config.Config{}, client, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, limiter.Enabled())

	result, err := limiter.AllowInvitation(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	token, ok, err := limiter.TryLockBootstrap(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, limiter.ReleaseBootstrap(context.Background(), token))
}

func TestEnabledRequiresAddr(t *testing.T) {
	_, err := NewClient(config.Config{RateLimit: config.RateLimitConfig{Enabled: true}})
	assert.Error(t, err)
}

func TestEnabledRequiresPositiveRate(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RedisAddr: "localhost:6379"}}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = NewCompletionLimiter(cfg, client, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestTokenBucketValidatesInput(t *testing.T) {
	var bucket *TokenBucket
	_, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.Nil(t, NewTokenBucket(nil))
}

func TestRetryAfter(t *testing.T) {
	assert.Zero(t, retryAfter(true, 0, 1))
	assert.Equal(t, 500*time.Millisecond, retryAfter(false, 0.5, 1))
	assert.Equal(t, 2*time.Second, retryAfter(false, 0, 0.5))
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 10*time.Second, defaultBucketTTL(1, 5))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 0))
}

func TestCastHelpers(t *testing.T) {
	assert.EqualValues(t, 1, castToInt(int64(1)))
	assert.EqualValues(t, 3, castToInt(3.7))
	assert.Equal(t, 2.5, castToFloat("2.5"))
	assert.Equal(t, 0.0, castToFloat("nope"))
	assert.Equal(t, 4.0, castToFloat(int64(4)))
}

func TestLockerWithoutClient(t *testing.T) {
	assert.Nil(t, NewLocker(nil, keyBootstrapLock, time.Second))

	var locker *Locker
	_, ok, err := locker.Acquire(context.Background())
	assert.ErrorIs(t, err, errLockNotConfigured)
	assert.False(t, ok)
	assert.NoError(t, locker.Release(context.Background(), "token"))
}
