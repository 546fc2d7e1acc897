package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertCompany(ctx context.Context, db *gorm.DB, company *Company) error
	InsertCompanyDomain(ctx context.Context, db *gorm.DB, companyID snowflake.ID, domain string, createdAt time.Time) error
	FindCompanyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	ListCompanyDomains(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]string, error)

	InsertAdmin(ctx context.Context, db *gorm.DB, admin *Admin) error
	FindAdminByEmail(ctx context.Context, db *gorm.DB, email string) (*Admin, error)
	UpdateAdminActive(ctx context.Context, db *gorm.DB, email string, active bool) (int64, error)

	InsertManager(ctx context.Context, db *gorm.DB, manager *ManagerProfile) error
	FindManagerByRef(ctx context.Context, db *gorm.DB, ref string) (*ManagerProfile, error)
	SoftDeleteManager(ctx context.Context, db *gorm.DB, ref string, deletedAt time.Time) (int64, error)
}
