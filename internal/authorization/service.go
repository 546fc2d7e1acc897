package authorization

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/errs"
)

// Subject is a resolved caller asking to perform an action.
type Subject struct {
	Role      string
	Ref       string
	CompanyID snowflake.ID
}

type Service interface {
	Authorize(ctx context.Context, subject Subject, object string, action string) error
}

var (
	ErrInvalidActor  = errs.New(errs.ErrValidation, "invalid_actor")
	ErrInvalidObject = errs.New(errs.ErrValidation, "invalid_object")
	ErrInvalidAction = errs.New(errs.ErrValidation, "invalid_action")
	ErrForbidden     = errs.New(errs.ErrAuthorization, "forbidden")
)
