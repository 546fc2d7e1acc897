package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	assessmentdomain "github.com/smallbiznis/pulse/internal/assessment/domain"
	campaigndomain "github.com/smallbiznis/pulse/internal/campaign/domain"
	"github.com/smallbiznis/pulse/internal/visibility/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const campaignColumns = `c.id, c.company_id, c.name, c.created_by, c.creator_kind, c.kind, c.code,
	c.share_link, c.tool_id, c.status, c.start_date, c.end_date, c.metadata, c.created_at, c.updated_at`

const resultColumns = `r.id, r.invitation_id, r.tool_id, r.submitter_name, r.submitter_email,
	r.responses, r.scores, r.completed_at`

func (r *repo) OrgWideCampaigns(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]campaigndomain.Campaign, error) {
	var campaigns []campaigndomain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT `+campaignColumns+`
		FROM campaigns c
		WHERE c.company_id = ? AND c.kind = ?
		ORDER BY c.created_at ASC, c.id ASC`,
		companyID,
		campaigndomain.KindOrgWide,
	).Scan(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) OrgWideResults(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]assessmentdomain.Result, error) {
	var results []assessmentdomain.Result
	err := db.WithContext(ctx).Raw(
		`SELECT `+resultColumns+`
		FROM assessment_results r
		JOIN invitations i ON i.id = r.invitation_id
		WHERE i.company_id = ?
		AND NOT EXISTS (
			SELECT 1 FROM campaigns c
			WHERE c.code = i.invite_code AND c.kind = ?
		)
		ORDER BY r.completed_at ASC, r.id ASC`,
		companyID,
		campaigndomain.KindPeerShared,
	).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repo) PeerSharedCampaigns(ctx context.Context, db *gorm.DB, managerRef string) ([]campaigndomain.Campaign, error) {
	var campaigns []campaigndomain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT `+campaignColumns+`
		FROM campaigns c
		WHERE c.created_by = ? AND c.creator_kind = ? AND c.kind = ?
		ORDER BY c.created_at ASC, c.id ASC`,
		managerRef,
		campaigndomain.CreatorManager,
		campaigndomain.KindPeerShared,
	).Scan(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) PeerSharedResults(ctx context.Context, db *gorm.DB, managerRef string) ([]assessmentdomain.Result, error) {
	var results []assessmentdomain.Result
	err := db.WithContext(ctx).Raw(
		`SELECT `+resultColumns+`
		FROM assessment_results r
		JOIN invitations i ON i.id = r.invitation_id
		JOIN campaigns c ON c.code = i.invite_code
		WHERE c.created_by = ? AND c.creator_kind = ? AND c.kind = ?
		ORDER BY r.completed_at ASC, r.id ASC`,
		managerRef,
		campaigndomain.CreatorManager,
		campaigndomain.KindPeerShared,
	).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
