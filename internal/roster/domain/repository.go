package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertMemberIfAbsent writes member unless (manager_id, email) exists and
	// returns the stored row with whether this call wrote it.
	InsertMemberIfAbsent(ctx context.Context, db *gorm.DB, member *TeamMember) (*TeamMember, bool, error)
	// InsertMembershipIfAbsent does the same for (team_member_id, team_owner_id).
	InsertMembershipIfAbsent(ctx context.Context, db *gorm.DB, membership *TeamMembership) (*TeamMembership, bool, error)
	ListByManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) ([]TeamMember, error)
}
