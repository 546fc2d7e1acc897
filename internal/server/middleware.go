package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pulse/internal/authorization"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	obscontext "github.com/smallbiznis/pulse/internal/observability/context"
)

// Identity is asserted by the upstream gateway.
const (
	HeaderIdentityKind = "X-Identity-Kind"
	HeaderIdentityRef  = "X-Identity-Ref"

	contextIdentityKey = "identity"
)

// IdentityRequired rejects requests without an asserted identity. When kinds
// are given the identity must be one of them.
func (s *Server) IdentityRequired(kinds ...identitydomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := identitydomain.ParseKind(c.GetHeader(HeaderIdentityKind))
		ref := strings.TrimSpace(c.GetHeader(HeaderIdentityRef))
		if err != nil || ref == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if len(kinds) > 0 && !containsKind(kinds, kind) {
			AbortWithError(c, ErrForbidden)
			return
		}

		identity := identitydomain.Identity{Kind: kind, Ref: ref}
		c.Set(contextIdentityKey, identity)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), string(kind), ref))
		c.Next()
	}
}

// authorizeAdminAction checks the admin may perform action on the company in
// the :id path parameter.
func (s *Server) authorizeAdminAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		companyID, err := parseSnowflakeID(c.Param("id"))
		if err != nil {
			AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
			return
		}

		ctx := c.Request.Context()
		admin, err := s.directory.ResolveAdmin(ctx, identity.Ref)
		if err != nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		if admin.CompanyID != companyID {
			AbortWithError(c, ErrForbidden)
			return
		}
		subject := authorization.Subject{Role: authorization.RoleAdmin, Ref: admin.Email, CompanyID: admin.CompanyID}
		if err := s.authzSvc.Authorize(ctx, subject, object, action); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(obscontext.WithCompanyID(ctx, companyID.String()))
		c.Next()
	}
}

func identityFromContext(c *gin.Context) (identitydomain.Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return identitydomain.Identity{}, false
	}
	identity, ok := value.(identitydomain.Identity)
	return identity, ok
}

func containsKind(kinds []identitydomain.Kind, kind identitydomain.Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
