package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/errs"
	"gorm.io/gorm"
)

type RecordRequest struct {
	InvitationID   snowflake.ID
	ToolID         string
	SubmitterName  string
	SubmitterEmail string
	Responses      map[string]any
	Scores         map[string]any
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) (Result, error)
	// RecordTx appends the result within the caller's transaction.
	RecordTx(ctx context.Context, tx *gorm.DB, req RecordRequest) (Result, error)
	ListByInvitation(ctx context.Context, invitationID snowflake.ID) ([]Result, error)
}

var (
	ErrInvalidInvitation = errs.New(errs.ErrValidation, "invalid_invitation")
	ErrInvalidTool       = errs.New(errs.ErrValidation, "invalid_tool")
)
