package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	assessmentdomain "github.com/smallbiznis/pulse/internal/assessment/domain"
	campaigndomain "github.com/smallbiznis/pulse/internal/campaign/domain"
	"gorm.io/gorm"
)

// Repository reads across campaigns, invitations and results. Every query
// applies the partition in SQL.
type Repository interface {
	OrgWideCampaigns(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]campaigndomain.Campaign, error)
	// OrgWideResults returns results of the company whose invite code does not
	// resolve to a peer shared campaign.
	OrgWideResults(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]assessmentdomain.Result, error)
	PeerSharedCampaigns(ctx context.Context, db *gorm.DB, managerRef string) ([]campaigndomain.Campaign, error)
	PeerSharedResults(ctx context.Context, db *gorm.DB, managerRef string) ([]assessmentdomain.Result, error)
}
