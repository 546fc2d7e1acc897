package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, result *Result) error
	ListByInvitation(ctx context.Context, db *gorm.DB, invitationID snowflake.ID) ([]*Result, error)
}
