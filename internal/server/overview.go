package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	visibilitydomain "github.com/smallbiznis/pulse/internal/visibility/domain"
)

func (s *Server) GetAdminOverview(c *gin.Context) {
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

	resp, err := s.visibilitySvc.AdminView(c.Request.Context(), visibilitydomain.AdminViewRequest{
		CompanyID: companyID,
		Viewer:    identity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetManagerOverview(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.visibilitySvc.ManagerView(c.Request.Context(), visibilitydomain.ManagerViewRequest{
		Viewer: identity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
