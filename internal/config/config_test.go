package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://pulse.example.com/")
	t.Setenv("CODE_LENGTH", "10")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "  Ops@Example.com ")

	cfg := Load()

	assert.Equal(t, "https://pulse.example.com", cfg.PublicBaseURL)
	assert.Equal(t, 10, cfg.Codes.Length)
	assert.Equal(t, 10, cfg.Codes.MaxAttempts)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "ops@example.com", cfg.Bootstrap.AdminEmail)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CODE_MAX_ATTEMPTS", "many")
	t.Setenv("RATE_LIMIT_COMPLETION_RATE", "fast")

	cfg := Load()

	assert.Equal(t, 10, cfg.Codes.MaxAttempts)
	assert.Equal(t, 1.0, cfg.RateLimit.CompletionRate)
}
