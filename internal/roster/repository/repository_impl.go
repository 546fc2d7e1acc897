package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/roster/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertMemberIfAbsent(ctx context.Context, db *gorm.DB, member *domain.TeamMember) (*domain.TeamMember, bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO team_members (id, manager_id, company_id, name, email, role, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (manager_id, email) DO NOTHING`,
		member.ID,
		member.ManagerID,
		member.CompanyID,
		member.Name,
		member.Email,
		member.Role,
		member.Status,
		member.CreatedAt,
	)
	if result.Error != nil {
		return nil, false, result.Error
	}

	var stored domain.TeamMember
	err := db.WithContext(ctx).Raw(
		`SELECT id, manager_id, company_id, name, email, role, status, created_at
		FROM team_members
		WHERE manager_id = ? AND email = ?`,
		member.ManagerID,
		member.Email,
	).Scan(&stored).Error
	if err != nil {
		return nil, false, err
	}
	if stored.ID == 0 {
		return nil, false, gorm.ErrRecordNotFound
	}
	return &stored, result.RowsAffected > 0, nil
}

func (r *repo) InsertMembershipIfAbsent(ctx context.Context, db *gorm.DB, membership *domain.TeamMembership) (*domain.TeamMembership, bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO team_memberships (id, team_member_id, team_owner_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (team_member_id, team_owner_id) DO NOTHING`,
		membership.ID,
		membership.TeamMemberID,
		membership.TeamOwnerID,
		membership.CreatedAt,
	)
	if result.Error != nil {
		return nil, false, result.Error
	}

	var stored domain.TeamMembership
	err := db.WithContext(ctx).Raw(
		`SELECT id, team_member_id, team_owner_id, created_at
		FROM team_memberships
		WHERE team_member_id = ? AND team_owner_id = ?`,
		membership.TeamMemberID,
		membership.TeamOwnerID,
	).Scan(&stored).Error
	if err != nil {
		return nil, false, err
	}
	if stored.ID == 0 {
		return nil, false, gorm.ErrRecordNotFound
	}
	return &stored, result.RowsAffected > 0, nil
}

func (r *repo) ListByManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) ([]domain.TeamMember, error) {
	var members []domain.TeamMember
	err := db.WithContext(ctx).Raw(
		`SELECT m.id, m.manager_id, m.company_id, m.name, m.email, m.role, m.status, m.created_at
		FROM team_members m
		JOIN team_memberships ms ON ms.team_member_id = m.id AND ms.team_owner_id = ?
		WHERE m.manager_id = ?
		ORDER BY m.created_at ASC, m.id ASC`,
		managerID,
		managerID,
	).Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
