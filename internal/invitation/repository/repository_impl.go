package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/invitation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectColumns = `id, company_id, email, name, invite_code, status, is_generic,
	sent_at, opened_at, started_at, completed_at, reset_count, created_at, updated_at`

const insertSQL = `INSERT INTO invitations (
	id, company_id, email, name, invite_code, status, is_generic, reset_count, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertArgs(invitation *domain.Invitation) []any {
	return []any{
		invitation.ID,
		invitation.CompanyID,
		invitation.Email,
		invitation.Name,
		invitation.InviteCode,
		invitation.Status,
		invitation.IsGeneric,
		invitation.ResetCount,
		invitation.CreatedAt,
		invitation.UpdatedAt,
	}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invitation *domain.Invitation) error {
	return db.WithContext(ctx).Exec(insertSQL, insertArgs(invitation)...).Error
}

func (r *repo) InsertGeneric(ctx context.Context, db *gorm.DB, invitation *domain.Invitation) (bool, error) {
	result := db.WithContext(ctx).Exec(insertSQL+` ON CONFLICT DO NOTHING`, insertArgs(invitation)...)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM invitations WHERE id = ?`,
		id,
	).Scan(&invitation).Error
	if err != nil {
		return nil, err
	}
	if invitation.ID == 0 {
		return nil, nil
	}
	return &invitation, nil
}

func (r *repo) FindGenericByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM invitations WHERE invite_code = ? AND is_generic = ?`,
		code,
		true,
	).Scan(&invitation).Error
	if err != nil {
		return nil, err
	}
	if invitation.ID == 0 {
		return nil, nil
	}
	return &invitation, nil
}

func (r *repo) InsertMetadata(ctx context.Context, db *gorm.DB, metadata *domain.Metadata) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invitation_metadata (invitation_id, role, department, team_size, generic_link, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (invitation_id) DO NOTHING`,
		metadata.InvitationID,
		metadata.Role,
		metadata.Department,
		metadata.TeamSize,
		metadata.GenericLink,
		metadata.CreatedAt,
	).Error
}

func (r *repo) FindMetadata(ctx context.Context, db *gorm.DB, invitationID snowflake.ID) (*domain.Metadata, error) {
	var metadata domain.Metadata
	err := db.WithContext(ctx).Raw(
		`SELECT invitation_id, role, department, team_size, generic_link, created_at
		 FROM invitation_metadata WHERE invitation_id = ?`,
		invitationID,
	).Scan(&metadata).Error
	if err != nil {
		return nil, err
	}
	if metadata.InvitationID == 0 {
		return nil, nil
	}
	return &metadata, nil
}

func (r *repo) AdvanceStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []domain.Status, status domain.Status, stamps domain.Stamps, updatedAt time.Time) (int64, error) {
	if len(from) == 0 {
		return 0, nil
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE invitations SET
			status = ?,
			sent_at = COALESCE(sent_at, ?),
			opened_at = COALESCE(opened_at, ?),
			started_at = COALESCE(started_at, ?),
			completed_at = COALESCE(completed_at, ?),
			updated_at = ?
		 WHERE id = ? AND status IN ?`,
		status,
		stamps.SentAt,
		stamps.OpenedAt,
		stamps.StartedAt,
		stamps.CompletedAt,
		updatedAt,
		id,
		from,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) Reset(ctx context.Context, db *gorm.DB, id snowflake.ID, updatedAt time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE invitations SET
			status = ?,
			sent_at = NULL,
			opened_at = NULL,
			started_at = NULL,
			completed_at = NULL,
			reset_count = reset_count + 1,
			updated_at = ?
		 WHERE id = ?`,
		domain.StatusPending,
		updatedAt,
		id,
	)
	return result.RowsAffected, result.Error
}
