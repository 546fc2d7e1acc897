package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	assessmentdomain "github.com/smallbiznis/pulse/internal/assessment/domain"
	"github.com/smallbiznis/pulse/internal/errs"
	invitationdomain "github.com/smallbiznis/pulse/internal/invitation/domain"
)

type Service interface {
	// Link reconciles the roster implied by one completed result.
	Link(ctx context.Context, result assessmentdomain.Result, invitation invitationdomain.Invitation) (LinkOutcome, error)
	// OnCompletion links with retries and never reports failure.
	OnCompletion(ctx context.Context, result assessmentdomain.Result, invitation invitationdomain.Invitation)
	ListRoster(ctx context.Context, managerID snowflake.ID) ([]TeamMember, error)
}

var (
	ErrInvalidManager = errs.New(errs.ErrValidation, "invalid_manager")
	ErrMissingEmail   = errs.New(errs.ErrLinkingDeferred, "submitter_email_missing")
	ErrDeferred       = errs.New(errs.ErrLinkingDeferred, "linking_deferred")
)
