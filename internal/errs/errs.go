// Package errs defines the error kinds shared by every domain package.
//
// Domain packages declare their own sentinel errors with New so that callers can
// match either the precise sentinel or the broader kind with errors.Is.
package errs

import "errors"

var (
	ErrValidation          = errors.New("validation_error")
	ErrAuthorization       = errors.New("authorization_error")
	ErrNotFound            = errors.New("not_found")
	ErrDuplicateInvitation = errors.New("duplicate_invitation")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrCodeExhaustion      = errors.New("code_exhaustion")
	ErrConflict            = errors.New("conflict")

	// ErrLinkingDeferred is an internal signal: roster linking did not complete but
	// the completion that triggered it did. It is never returned to a submitter.
	ErrLinkingDeferred = errors.New("linking_deferred")
)

var kinds = []error{
	ErrValidation,
	ErrAuthorization,
	ErrNotFound,
	ErrDuplicateInvitation,
	ErrInvalidTransition,
	ErrCodeExhaustion,
	ErrConflict,
	ErrLinkingDeferred,
}

// Error is a coded domain error belonging to one kind.
type Error struct {
	Kind error
	Code string
}

// New returns a domain sentinel with the given machine-readable code.
func New(kind error, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

func (e *Error) Error() string {
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// KindOf returns the kind err belongs to, or nil when it is not a domain error.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// CodeOf returns the code of the outermost domain error in err's chain.
func CodeOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr != nil {
		return domainErr.Code
	}
	if kind := KindOf(err); kind != nil {
		return kind.Error()
	}
	return ""
}

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCodeExhaustion)
}
