package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invitationdomain "github.com/smallbiznis/pulse/internal/invitation/domain"
)

type invitationMetadataRequest struct {
	Role        string `json:"role"`
	Department  string `json:"department"`
	TeamSize    int    `json:"team_size"`
	GenericLink bool   `json:"generic_link"`
}

type createInvitationRequest struct {
	Email      string                     `json:"email"`
	Name       string                     `json:"name"`
	CompanyID  string                     `json:"company_id"`
	InviteCode string                     `json:"invite_code"`
	Metadata   *invitationMetadataRequest `json:"metadata"`
}

type advanceInvitationRequest struct {
	Status string `json:"status"`
}

type resetInvitationRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) CreateInvitation(c *gin.Context) {
	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	companyID, err := parseSnowflakeID(req.CompanyID)
	if err != nil {
		AbortWithError(c, newValidationError("company_id", "invalid_company_id", "invalid company_id"))
		return
	}

	var metadata *invitationdomain.MetadataInput
	if req.Metadata != nil {
		metadata = &invitationdomain.MetadataInput{
			Role:        strings.TrimSpace(req.Metadata.Role),
			Department:  strings.TrimSpace(req.Metadata.Department),
			TeamSize:    req.Metadata.TeamSize,
			GenericLink: req.Metadata.GenericLink,
		}
	}

	resp, created, err := s.invitationSvc.Create(c.Request.Context(), invitationdomain.CreateInvitationRequest{
		Email:      strings.TrimSpace(req.Email),
		Name:       strings.TrimSpace(req.Name),
		CompanyID:  companyID,
		InviteCode: strings.TrimSpace(req.InviteCode),
		Metadata:   metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": resp})
}

func (s *Server) AdvanceInvitation(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req advanceInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invitationSvc.Advance(c.Request.Context(), id, invitationdomain.Status(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ResetInvitation(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req resetInvitationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.invitationSvc.Reset(c.Request.Context(), invitationdomain.ResetRequest{
		InvitationID: id,
		Admin:        identity,
		Reason:       strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
