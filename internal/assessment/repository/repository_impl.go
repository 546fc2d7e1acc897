package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/assessment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, result *domain.Result) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO assessment_results (
			id, invitation_id, tool_id, submitter_name, submitter_email,
			responses, scores, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.InvitationID,
		result.ToolID,
		result.SubmitterName,
		result.SubmitterEmail,
		result.Responses,
		result.Scores,
		result.CompletedAt,
	).Error
}

func (r *repo) ListByInvitation(ctx context.Context, db *gorm.DB, invitationID snowflake.ID) ([]*domain.Result, error) {
	var results []*domain.Result
	err := db.WithContext(ctx).
		Model(&domain.Result{}).
		Where("invitation_id = ?", invitationID).
		Order("completed_at asc, id asc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
