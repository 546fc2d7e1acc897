package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/errs"
)

type CreateCompanyRequest struct {
	Name           string
	Domains        []string
	ExternalOrgRef string
}

type CreateAdminRequest struct {
	CompanyID snowflake.ID
	Email     string
}

type CreateManagerRequest struct {
	CompanyID           snowflake.ID
	Email               string
	ExternalIdentityRef string
}

//go:generate mockgen -source=service.go -destination=mock/directory_mock.go -package=mock

// Directory resolves asserted identities to admins, managers and companies.
type Directory interface {
	ResolveManager(ctx context.Context, ref string) (ManagerProfile, error)
	ResolveAdmin(ctx context.Context, ref string) (Admin, error)
	Resolve(ctx context.Context, identity Identity) (Principal, error)
	IsCompanyAdmin(ctx context.Context, ref string, companyID snowflake.ID) (bool, error)
	GetCompany(ctx context.Context, id snowflake.ID) (Company, error)

	CreateCompany(ctx context.Context, req CreateCompanyRequest) (Company, error)
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (Admin, error)
	CreateManager(ctx context.Context, req CreateManagerRequest) (ManagerProfile, error)
	SetAdminActive(ctx context.Context, email string, active bool) error
	DeleteManager(ctx context.Context, ref string) error
}

var (
	ErrInvalidIdentity  = errs.New(errs.ErrValidation, "invalid_identity")
	ErrInvalidName      = errs.New(errs.ErrValidation, "invalid_name")
	ErrInvalidEmail     = errs.New(errs.ErrValidation, "invalid_email")
	ErrInvalidCompany   = errs.New(errs.ErrValidation, "invalid_company")
	ErrIdentityNotFound = errs.New(errs.ErrNotFound, "identity_not_found")
	ErrCompanyNotFound  = errs.New(errs.ErrNotFound, "company_not_found")
	ErrAlreadyExists    = errs.New(errs.ErrConflict, "identity_already_exists")
)
