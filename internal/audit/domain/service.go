package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/errs"
	"github.com/smallbiznis/pulse/pkg/db/pagination"
)

type ListAuditLogRequest struct {
	pagination.Pagination
	CompanyID  snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	AuditLog(ctx context.Context, companyID *snowflake.ID, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidCompany   = errs.New(errs.ErrValidation, "invalid_company")
	ErrInvalidPageToken = errs.New(errs.ErrValidation, "invalid_page_token")
	ErrInvalidAction    = errs.New(errs.ErrValidation, "invalid_action")
)
