package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind identifies which directory an identity ref belongs to.
type Kind string

const (
	KindAdmin   Kind = "admin"
	KindManager Kind = "manager"
)

func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindAdmin:
		return KindAdmin, nil
	case KindManager:
		return KindManager, nil
	default:
		return "", ErrInvalidIdentity
	}
}

// Identity is an asserted caller: an admin email or a manager's external identity ref.
type Identity struct {
	Kind Kind
	Ref  string
}

// Principal is a resolved identity.
type Principal struct {
	Kind      Kind
	ID        snowflake.ID
	CompanyID snowflake.ID
	Email     string
	Ref       string
}

type Company struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"not null" json:"name"`
	ExternalOrgRef *string      `gorm:"column:external_org_ref" json:"external_org_ref,omitempty"`
	Domains        []string     `gorm:"-" json:"domains"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
}

func (Company) TableName() string { return "companies" }

type Admin struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"not null" json:"email"`
	CompanyID snowflake.ID `gorm:"not null" json:"company_id"`
	Active    bool         `gorm:"not null" json:"active"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (Admin) TableName() string { return "admins" }

type ManagerProfile struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	Email               string       `gorm:"not null" json:"email"`
	ExternalIdentityRef string       `gorm:"column:external_identity_ref;not null" json:"external_identity_ref"`
	CompanyID           snowflake.ID `gorm:"not null" json:"company_id"`
	CreatedAt           time.Time    `gorm:"not null" json:"created_at"`
	DeletedAt           *time.Time   `json:"deleted_at,omitempty"`
}

func (ManagerProfile) TableName() string { return "manager_profiles" }

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
