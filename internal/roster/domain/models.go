package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MemberStatus string

const (
	MemberActive   MemberStatus = "ACTIVE"
	MemberInactive MemberStatus = "INACTIVE"
)

type TeamMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ManagerID snowflake.ID `gorm:"not null" json:"manager_id"`
	CompanyID snowflake.ID `gorm:"not null" json:"company_id"`
	Name      string       `json:"name"`
	Email     string       `gorm:"not null" json:"email"`
	Role      string       `json:"role,omitempty"`
	Status    MemberStatus `gorm:"not null" json:"status"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (TeamMember) TableName() string { return "team_members" }

type TeamMembership struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TeamMemberID snowflake.ID `gorm:"not null" json:"team_member_id"`
	TeamOwnerID  snowflake.ID `gorm:"not null" json:"team_owner_id"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
}

func (TeamMembership) TableName() string { return "team_memberships" }

// LinkOutcome describes what a linking attempt did to the roster.
type LinkOutcome struct {
	Result            string       `json:"result"`
	TeamMemberID      snowflake.ID `json:"team_member_id,omitempty"`
	MemberCreated     bool         `json:"member_created"`
	MembershipCreated bool         `json:"membership_created"`
	Reason            string       `json:"reason,omitempty"`
}
