package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/errs"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
)

type CreateCampaignRequest struct {
	CompanyID snowflake.ID
	Creator   identitydomain.Identity
	Kind      Kind
	ToolID    string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Message   string
}

type Service interface {
	Create(ctx context.Context, req CreateCampaignRequest) (Campaign, error)
	SetStatus(ctx context.Context, id snowflake.ID, status Status) (Campaign, error)
	GetByID(ctx context.Context, id snowflake.ID) (Campaign, error)
	GetByCode(ctx context.Context, code string) (Campaign, error)
	// CanManage reports whether caller may change the lifecycle of campaign:
	// an admin of its company for ORG_WIDE, its creating manager for PEER_SHARED.
	CanManage(ctx context.Context, caller identitydomain.Identity, campaign Campaign) error
}

// CodeGenerator issues campaign codes.
type CodeGenerator interface {
	Generate(ctx context.Context, length int) (string, error)
}

var (
	ErrInvalidName       = errs.New(errs.ErrValidation, "invalid_name")
	ErrInvalidKind       = errs.New(errs.ErrValidation, "invalid_kind")
	ErrInvalidWindow     = errs.New(errs.ErrValidation, "invalid_window")
	ErrInvalidCompany    = errs.New(errs.ErrValidation, "invalid_company")
	ErrInvalidCreator    = errs.New(errs.ErrValidation, "invalid_creator")
	ErrUnknownTool       = errs.New(errs.ErrValidation, "unknown_tool")
	ErrInvalidID         = errs.New(errs.ErrValidation, "invalid_id")
	ErrNotAuthorized     = errs.New(errs.ErrAuthorization, "not_authorized")
	ErrKindNotAllowed    = errs.New(errs.ErrAuthorization, "campaign_kind_not_allowed")
	ErrInvalidStatus     = errs.New(errs.ErrValidation, "invalid_status")
	ErrInvalidTransition = errs.New(errs.ErrInvalidTransition, "invalid_status_transition")
	ErrNotFound          = errs.New(errs.ErrNotFound, "campaign_not_found")
	ErrCodeExhausted     = errs.New(errs.ErrCodeExhaustion, "campaign_code_exhausted")
)
