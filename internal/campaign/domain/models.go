package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Kind string

const (
	KindOrgWide    Kind = "ORG_WIDE"
	KindPeerShared Kind = "PEER_SHARED"
)

func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(value))) {
	case KindOrgWide:
		return KindOrgWide, nil
	case KindPeerShared:
		return KindPeerShared, nil
	default:
		return "", ErrInvalidKind
	}
}

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

var statusRank = map[Status]int{
	StatusDraft:     0,
	StatusActive:    1,
	StatusCompleted: 2,
}

func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := statusRank[status]; !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Before reports whether s precedes other in the lifecycle.
func (s Status) Before(other Status) bool {
	return statusRank[s] < statusRank[other]
}

// Predecessors lists every status that may move forward to s.
func (s Status) Predecessors() []Status {
	out := make([]Status, 0, len(statusRank))
	for status, rank := range statusRank {
		if rank < statusRank[s] {
			out = append(out, status)
		}
	}
	return out
}

type CreatorKind string

const (
	CreatorAdmin   CreatorKind = "ADMIN"
	CreatorManager CreatorKind = "MANAGER"
)

const MetadataVersion = 1

// Metadata is the versioned document stored with every campaign.
type Metadata struct {
	Version  int    `json:"version"`
	Link     string `json:"link"`
	ToolName string `json:"tool_name"`
	Message  string `json:"message,omitempty"`
}

type Campaign struct {
	ID          snowflake.ID                 `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID                 `gorm:"not null" json:"company_id"`
	Name        string                       `gorm:"not null" json:"name"`
	CreatedBy   string                       `gorm:"not null" json:"created_by"`
	CreatorKind CreatorKind                  `gorm:"not null" json:"creator_kind"`
	Kind        Kind                         `gorm:"not null" json:"kind"`
	Code        string                       `gorm:"not null" json:"code"`
	ShareLink   string                       `gorm:"not null" json:"share_link"`
	ToolID      string                       `gorm:"not null" json:"tool_id"`
	Status      Status                       `gorm:"not null" json:"status"`
	StartDate   time.Time                    `gorm:"not null" json:"start_date"`
	EndDate     time.Time                    `gorm:"not null" json:"end_date"`
	Metadata    datatypes.JSONType[Metadata] `gorm:"type:jsonb" json:"metadata"`
	CreatedAt   time.Time                    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                    `gorm:"not null" json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }

// NormalizeCode canonicalizes a user supplied code for lookups.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
