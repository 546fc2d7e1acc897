package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Campaign, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Campaign, error)
	// AdvanceStatus moves the campaign to status only when its current status
	// is one of from, and returns the number of rows changed.
	AdvanceStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []Status, status Status, updatedAt time.Time) (int64, error)
}
