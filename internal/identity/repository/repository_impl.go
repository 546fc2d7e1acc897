package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/identity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertCompany(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO companies (id, name, external_org_ref, created_at) VALUES (?, ?, ?, ?)`,
		company.ID,
		company.Name,
		company.ExternalOrgRef,
		company.CreatedAt,
	).Error
}

func (r *repo) InsertCompanyDomain(ctx context.Context, db *gorm.DB, companyID snowflake.ID, domainName string, createdAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO company_domains (company_id, domain, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (company_id, domain) DO NOTHING`,
		companyID,
		domainName,
		createdAt,
	).Error
}

func (r *repo) FindCompanyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Company, error) {
	var company domain.Company
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, external_org_ref, created_at FROM companies WHERE id = ?`,
		id,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) ListCompanyDomains(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]string, error) {
	var domains []string
	err := db.WithContext(ctx).Raw(
		`SELECT domain FROM company_domains WHERE company_id = ? ORDER BY domain`,
		companyID,
	).Scan(&domains).Error
	if err != nil {
		return nil, err
	}
	return domains, nil
}

func (r *repo) InsertAdmin(ctx context.Context, db *gorm.DB, admin *domain.Admin) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO admins (id, email, company_id, active, created_at) VALUES (?, ?, ?, ?, ?)`,
		admin.ID,
		admin.Email,
		admin.CompanyID,
		admin.Active,
		admin.CreatedAt,
	).Error
}

func (r *repo) FindAdminByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Admin, error) {
	var admin domain.Admin
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, company_id, active, created_at FROM admins WHERE email = ?`,
		email,
	).Scan(&admin).Error
	if err != nil {
		return nil, err
	}
	if admin.ID == 0 {
		return nil, nil
	}
	return &admin, nil
}

func (r *repo) UpdateAdminActive(ctx context.Context, db *gorm.DB, email string, active bool) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE admins SET active = ? WHERE email = ?`,
		active,
		email,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) InsertManager(ctx context.Context, db *gorm.DB, manager *domain.ManagerProfile) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO manager_profiles (id, email, external_identity_ref, company_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		manager.ID,
		manager.Email,
		manager.ExternalIdentityRef,
		manager.CompanyID,
		manager.CreatedAt,
	).Error
}

func (r *repo) FindManagerByRef(ctx context.Context, db *gorm.DB, ref string) (*domain.ManagerProfile, error) {
	var manager domain.ManagerProfile
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, external_identity_ref, company_id, created_at, deleted_at
		 FROM manager_profiles
		 WHERE external_identity_ref = ? AND deleted_at IS NULL`,
		ref,
	).Scan(&manager).Error
	if err != nil {
		return nil, err
	}
	if manager.ID == 0 {
		return nil, nil
	}
	return &manager, nil
}

func (r *repo) SoftDeleteManager(ctx context.Context, db *gorm.DB, ref string, deletedAt time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE manager_profiles SET deleted_at = ? WHERE external_identity_ref = ? AND deleted_at IS NULL`,
		deletedAt,
		ref,
	)
	return result.RowsAffected, result.Error
}
