package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	campaigndomain "github.com/smallbiznis/pulse/internal/campaign/domain"
)

type createCampaignRequest struct {
	CompanyID string `json:"company_id"`
	Kind      string `json:"kind"`
	ToolID    string `json:"tool_id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Message   string `json:"message"`
}

type setCampaignStatusRequest struct {
	Status string `json:"status"`
}

// publicCampaign is what participants see when they open a share link.
type publicCampaign struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	ToolID    string `json:"tool_id"`
	ToolName  string `json:"tool_name"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Message   string `json:"message,omitempty"`
}

func (s *Server) CreateCampaign(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	companyID, err := parseSnowflakeID(req.CompanyID)
	if err != nil {
		AbortWithError(c, newValidationError("company_id", "invalid_company_id", "invalid company_id"))
		return
	}
	startDate, err := parseDate(req.StartDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	endDate, err := parseDate(req.EndDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	resp, err := s.campaignSvc.Create(c.Request.Context(), campaigndomain.CreateCampaignRequest{
		CompanyID: companyID,
		Creator:   identity,
		Kind:      campaigndomain.Kind(strings.TrimSpace(req.Kind)),
		ToolID:    strings.TrimSpace(req.ToolID),
		Name:      strings.TrimSpace(req.Name),
		StartDate: startDate,
		EndDate:   endDate,
		Message:   req.Message,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetCampaignByID(c *gin.Context) {
	campaign, ok := s.loadManagedCampaign(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": campaign})
}

func (s *Server) SetCampaignStatus(c *gin.Context) {
	campaign, ok := s.loadManagedCampaign(c)
	if !ok {
		return
	}

	var req setCampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.campaignSvc.SetStatus(c.Request.Context(), campaign.ID, campaigndomain.Status(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCampaignByCode(c *gin.Context) {
	campaign, err := s.campaignSvc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	metadata := campaign.Metadata.Data()
	c.JSON(http.StatusOK, gin.H{"data": publicCampaign{
		Name:      campaign.Name,
		Code:      campaign.Code,
		ToolID:    campaign.ToolID,
		ToolName:  metadata.ToolName,
		Kind:      string(campaign.Kind),
		Status:    string(campaign.Status),
		StartDate: campaign.StartDate.Format(dateOnlyLayout),
		EndDate:   campaign.EndDate.Format(dateOnlyLayout),
		Message:   metadata.Message,
	}})
}

// loadManagedCampaign resolves :id and checks the caller may manage it. It
// aborts the request on failure.
func (s *Server) loadManagedCampaign(c *gin.Context) (campaigndomain.Campaign, bool) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return campaigndomain.Campaign{}, false
	}
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return campaigndomain.Campaign{}, false
	}

	ctx := c.Request.Context()
	campaign, err := s.campaignSvc.GetByID(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return campaigndomain.Campaign{}, false
	}
	if err := s.campaignSvc.CanManage(ctx, identity, campaign); err != nil {
		AbortWithError(c, err)
		return campaigndomain.Campaign{}, false
	}
	return campaign, true
}
