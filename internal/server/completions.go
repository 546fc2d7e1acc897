package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	invitationdomain "github.com/smallbiznis/pulse/internal/invitation/domain"
	"github.com/smallbiznis/pulse/internal/observability/logger"
	"github.com/smallbiznis/pulse/internal/ratelimit"
	"go.uber.org/zap"
)

// maxCompletionBody bounds how much of a completion body the rate limiter buffers.
const maxCompletionBody = 1 << 20

type completionLimiter interface {
	Enabled() bool
	AllowInvitation(ctx context.Context, invitationID string) (*ratelimit.RateLimitResult, error)
}

type recordCompletionRequest struct {
	InvitationID string         `json:"invitation_id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Responses    map[string]any `json:"responses"`
	Scores       map[string]any `json:"scores"`
}

func (s *Server) RecordCompletion(c *gin.Context) {
	var req recordCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invitationID, err := parseSnowflakeID(req.InvitationID)
	if err != nil {
		AbortWithError(c, newValidationError("invitation_id", "invalid_invitation_id", "invalid invitation_id"))
		return
	}

	resp, err := s.invitationSvc.RecordCompletion(c.Request.Context(), invitationdomain.CompletionEvent{
		InvitationID:   invitationID,
		SubmitterName:  strings.TrimSpace(req.Name),
		SubmitterEmail: strings.TrimSpace(req.Email),
		Payload: invitationdomain.Payload{
			Responses: req.Responses,
			Scores:    req.Scores,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// CompletionRateLimit throttles submissions per invitation. Generic links
// share one invitation, so this bounds fan-out through a single link.
func (s *Server) CompletionRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		invitationID, err := readCompletionInvitationID(c)
		if errors.Is(err, ErrRequestTooLarge) {
			AbortWithError(c, err)
			return
		}
		if err != nil {
			logger.FromContext(ctx).Warn("completion rate limit read body failed", zap.Error(err))
			AbortWithError(c, invalidRequestError())
			return
		}
		if invitationID == "" {
			c.Next()
			return
		}

		result, err := s.limiter.AllowInvitation(ctx, invitationID)
		if err != nil {
			logger.FromContext(ctx).Warn("completion rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			logger.FromContext(ctx).Info("completion rate limited", zap.String("invitation_id", invitationID))
			AbortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}

func readCompletionInvitationID(c *gin.Context) (string, error) {
	if c.Request.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCompletionBody+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxCompletionBody {
		return "", ErrRequestTooLarge
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}
	var key struct {
		InvitationID string `json:"invitation_id"`
	}
	if err := json.Unmarshal(body, &key); err != nil {
		return "", err
	}
	return strings.TrimSpace(key.InvitationID), nil
}
