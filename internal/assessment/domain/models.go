package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Result is one submitted assessment. Results are never updated.
type Result struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	InvitationID   snowflake.ID      `gorm:"not null" json:"invitation_id"`
	ToolID         string            `gorm:"not null" json:"tool_id"`
	SubmitterName  string            `json:"submitter_name"`
	SubmitterEmail string            `json:"submitter_email"`
	Responses      datatypes.JSONMap `gorm:"type:jsonb" json:"responses,omitempty"`
	Scores         datatypes.JSONMap `gorm:"type:jsonb" json:"scores,omitempty"`
	CompletedAt    time.Time         `gorm:"not null" json:"completed_at"`
}

func (Result) TableName() string { return "assessment_results" }
