package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	assessmentdomain "github.com/smallbiznis/pulse/internal/assessment/domain"
	campaigndomain "github.com/smallbiznis/pulse/internal/campaign/domain"
	"github.com/smallbiznis/pulse/internal/errs"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
)

type MetadataInput struct {
	Role        string
	Department  string
	TeamSize    int
	GenericLink bool
}

type CreateInvitationRequest struct {
	Email      string
	Name       string
	CompanyID  snowflake.ID
	InviteCode string
	Metadata   *MetadataInput
}

type ResetRequest struct {
	InvitationID snowflake.ID
	Admin        identitydomain.Identity
	Reason       string
}

type Payload struct {
	Responses map[string]any
	Scores    map[string]any
}

type CompletionEvent struct {
	InvitationID   snowflake.ID
	SubmitterName  string
	SubmitterEmail string
	Payload        Payload
}

type Service interface {
	// Create returns the invitation and whether a new row was written. A
	// generic link reuses its single shared invitation.
	Create(ctx context.Context, req CreateInvitationRequest) (Invitation, bool, error)
	Advance(ctx context.Context, id snowflake.ID, target Status) (Invitation, error)
	Reset(ctx context.Context, req ResetRequest) (Invitation, error)
	RecordCompletion(ctx context.Context, event CompletionEvent) (assessmentdomain.Result, error)
	Get(ctx context.Context, id snowflake.ID) (Invitation, error)
}

// CampaignLookup resolves invite codes to campaigns.
type CampaignLookup interface {
	GetByCode(ctx context.Context, code string) (campaigndomain.Campaign, error)
}

// CompletionListener is notified after a completion is recorded. It must not
// fail the completion.
type CompletionListener interface {
	OnCompletion(ctx context.Context, result assessmentdomain.Result, invitation Invitation)
}

var (
	ErrInvalidID           = errs.New(errs.ErrValidation, "invalid_id")
	ErrInvalidEmail        = errs.New(errs.ErrValidation, "invalid_email")
	ErrInvalidCompany      = errs.New(errs.ErrValidation, "invalid_company")
	ErrUnknownInviteCode   = errs.New(errs.ErrValidation, "unknown_invite_code")
	ErrCompanyMismatch     = errs.New(errs.ErrValidation, "invite_code_company_mismatch")
	ErrInvalidStatus       = errs.New(errs.ErrValidation, "invalid_status")
	ErrInvalidTransition   = errs.New(errs.ErrInvalidTransition, "invalid_status_transition")
	ErrDuplicateInvitation = errs.New(errs.ErrDuplicateInvitation, "duplicate_invitation")
	ErrNotFound            = errs.New(errs.ErrNotFound, "invitation_not_found")
	ErrNotAuthorized       = errs.New(errs.ErrAuthorization, "not_authorized")
)
