package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/campaign/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectColumns = `id, company_id, name, created_by, creator_kind, kind, code, share_link,
	tool_id, status, start_date, end_date, metadata, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaigns (`+selectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.CompanyID,
		campaign.Name,
		campaign.CreatedBy,
		campaign.CreatorKind,
		campaign.Kind,
		campaign.Code,
		campaign.ShareLink,
		campaign.ToolID,
		campaign.Status,
		campaign.StartDate,
		campaign.EndDate,
		campaign.Metadata,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM campaigns WHERE id = ?`,
		id,
	).Scan(&campaign).Error
	if err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, nil
	}
	return &campaign, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM campaigns WHERE code = ?`,
		code,
	).Scan(&campaign).Error
	if err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, nil
	}
	return &campaign, nil
}

func (r *repo) AdvanceStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []domain.Status, status domain.Status, updatedAt time.Time) (int64, error) {
	if len(from) == 0 {
		return 0, nil
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ? AND status IN ?`,
		status,
		updatedAt,
		id,
		from,
	)
	return result.RowsAffected, result.Error
}
