package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSent      Status = "SENT"
	StatusOpened    Status = "OPENED"
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
)

// Lifecycle lists statuses in order.
var Lifecycle = []Status{
	StatusPending,
	StatusSent,
	StatusOpened,
	StatusStarted,
	StatusCompleted,
}

func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if status.rank() < 0 {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s Status) rank() int {
	for i, status := range Lifecycle {
		if status == s {
			return i
		}
	}
	return -1
}

// Before reports whether s precedes other in the lifecycle.
func (s Status) Before(other Status) bool {
	return s.rank() < other.rank()
}

// Predecessors lists every status that may move forward to s.
func (s Status) Predecessors() []Status {
	rank := s.rank()
	if rank <= 0 {
		return nil
	}
	out := make([]Status, rank)
	copy(out, Lifecycle[:rank])
	return out
}

type Invitation struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID `gorm:"not null" json:"company_id"`
	Email       string       `gorm:"not null" json:"email"`
	Name        string       `gorm:"not null" json:"name"`
	InviteCode  string       `gorm:"not null" json:"invite_code"`
	Status      Status       `gorm:"not null" json:"status"`
	IsGeneric   bool         `gorm:"not null" json:"is_generic"`
	SentAt      *time.Time   `json:"sent_at,omitempty"`
	OpenedAt    *time.Time   `json:"opened_at,omitempty"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	ResetCount  int          `gorm:"not null" json:"reset_count"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`

	Metadata *Metadata `gorm:"-" json:"metadata,omitempty"`
}

func (Invitation) TableName() string { return "invitations" }

// Metadata carries optional participant context captured with an invitation.
type Metadata struct {
	InvitationID snowflake.ID `gorm:"primaryKey" json:"-"`
	Role         string       `json:"role,omitempty"`
	Department   string       `json:"department,omitempty"`
	TeamSize     int          `json:"team_size,omitempty"`
	GenericLink  bool         `json:"generic_link"`
	CreatedAt    time.Time    `json:"-"`
}

func (Metadata) TableName() string { return "invitation_metadata" }
