package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/errs"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
)

type AdminViewRequest struct {
	CompanyID snowflake.ID
	Viewer    identitydomain.Identity
}

type ManagerViewRequest struct {
	Viewer identitydomain.Identity
}

type Service interface {
	AdminView(ctx context.Context, req AdminViewRequest) (AdminView, error)
	ManagerView(ctx context.Context, req ManagerViewRequest) (ManagerView, error)
}

var (
	ErrInvalidCompany = errs.New(errs.ErrValidation, "invalid_company")
	ErrNotAuthorized  = errs.New(errs.ErrAuthorization, "not_authorized")
)
