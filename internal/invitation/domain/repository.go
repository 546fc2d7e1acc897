package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Stamps holds lifecycle timestamps to set when still empty.
type Stamps struct {
	SentAt      *time.Time
	OpenedAt    *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invitation *Invitation) error
	// InsertGeneric writes the shared invitation of a generic code unless one
	// exists, and reports whether it wrote a row.
	InsertGeneric(ctx context.Context, db *gorm.DB, invitation *Invitation) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invitation, error)
	FindGenericByCode(ctx context.Context, db *gorm.DB, code string) (*Invitation, error)
	InsertMetadata(ctx context.Context, db *gorm.DB, metadata *Metadata) error
	FindMetadata(ctx context.Context, db *gorm.DB, invitationID snowflake.ID) (*Metadata, error)
	// AdvanceStatus moves the invitation to status only when its current status
	// is one of from.
	AdvanceStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []Status, status Status, stamps Stamps, updatedAt time.Time) (int64, error)
	Reset(ctx context.Context, db *gorm.DB, id snowflake.ID, updatedAt time.Time) (int64, error)
}
