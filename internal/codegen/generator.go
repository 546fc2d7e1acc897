// Package codegen issues short, unguessable codes that identify campaigns.
package codegen

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/smallbiznis/pulse/internal/errs"
	"github.com/smallbiznis/pulse/internal/observability/metrics"
	"go.uber.org/zap"
)

// Alphabet excludes 0, O, 1 and I. Its size divides 256, so a byte modulo
// len(Alphabet) is uniform.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const (
	DefaultLength      = 8
	DefaultMaxAttempts = 10
	MinLength          = 4
	MaxLength          = 32
)

var (
	ErrInvalidLength = errs.New(errs.ErrValidation, "invalid_code_length")
	ErrExhausted     = errs.New(errs.ErrCodeExhaustion, "code_exhaustion")
)

// Checker reports whether a code is already taken by a campaign or invitation.
type Checker interface {
	Exists(ctx context.Context, code string) (bool, error)
}

type Options struct {
	Length      int
	MaxAttempts int
}

type Generator struct {
	checker     Checker
	length      int
	maxAttempts int
	random      io.Reader
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewGenerator(checker Checker, opts Options, log *zap.Logger, m *metrics.Metrics) *Generator {
	if opts.Length == 0 {
		opts.Length = DefaultLength
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		checker:     checker,
		length:      opts.Length,
		maxAttempts: opts.MaxAttempts,
		random:      rand.Reader,
		log:         log.Named("codegen"),
		metrics:     m,
	}
}

// Generate returns a code of the given length (the configured default when
// length is zero) that no campaign or invitation uses yet.
func (g *Generator) Generate(ctx context.Context, length int) (string, error) {
	if length == 0 {
		length = g.length
	}
	if length < MinLength || length > MaxLength {
		return "", ErrInvalidLength
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code, err := g.draw(length)
		if err != nil {
			return "", err
		}

		exists, err := g.checker.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !exists {
			return code, nil
		}

		g.metrics.RecordCodeCollision()
		g.log.Debug("generated code already taken", zap.Int("attempt", attempt))
	}

	g.log.Warn("code space exhausted", zap.Int("length", length), zap.Int("attempts", g.maxAttempts))
	return "", ErrExhausted
}

func (g *Generator) draw(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}
