package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/clock"
	"github.com/smallbiznis/pulse/internal/identity/domain"
	"github.com/smallbiznis/pulse/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Directory {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("identity.directory"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) ResolveManager(ctx context.Context, ref string) (domain.ManagerProfile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.ManagerProfile{}, domain.ErrIdentityNotFound
	}

	manager, err := s.repo.FindManagerByRef(ctx, s.db, ref)
	if err != nil {
		return domain.ManagerProfile{}, err
	}
	if manager == nil {
		return domain.ManagerProfile{}, domain.ErrIdentityNotFound
	}
	return *manager, nil
}

func (s *Service) ResolveAdmin(ctx context.Context, ref string) (domain.Admin, error) {
	email := domain.NormalizeEmail(ref)
	if email == "" {
		return domain.Admin{}, domain.ErrIdentityNotFound
	}

	admin, err := s.repo.FindAdminByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Admin{}, err
	}
	if admin == nil || !admin.Active {
		return domain.Admin{}, domain.ErrIdentityNotFound
	}
	return *admin, nil
}

func (s *Service) Resolve(ctx context.Context, identity domain.Identity) (domain.Principal, error) {
	switch identity.Kind {
	case domain.KindAdmin:
		admin, err := s.ResolveAdmin(ctx, identity.Ref)
		if err != nil {
			return domain.Principal{}, err
		}
		return domain.Principal{
			Kind:      domain.KindAdmin,
			ID:        admin.ID,
			CompanyID: admin.CompanyID,
			Email:     admin.Email,
			Ref:       admin.Email,
		}, nil
	case domain.KindManager:
		manager, err := s.ResolveManager(ctx, identity.Ref)
		if err != nil {
			return domain.Principal{}, err
		}
		return domain.Principal{
			Kind:      domain.KindManager,
			ID:        manager.ID,
			CompanyID: manager.CompanyID,
			Email:     manager.Email,
			Ref:       manager.ExternalIdentityRef,
		}, nil
	default:
		return domain.Principal{}, domain.ErrInvalidIdentity
	}
}

func (s *Service) IsCompanyAdmin(ctx context.Context, ref string, companyID snowflake.ID) (bool, error) {
	admin, err := s.ResolveAdmin(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return false, nil
		}
		return false, err
	}
	return admin.CompanyID == companyID, nil
}

func (s *Service) GetCompany(ctx context.Context, id snowflake.ID) (domain.Company, error) {
	if id == 0 {
		return domain.Company{}, domain.ErrInvalidCompany
	}

	company, err := s.repo.FindCompanyByID(ctx, s.db, id)
	if err != nil {
		return domain.Company{}, err
	}
	if company == nil {
		return domain.Company{}, domain.ErrCompanyNotFound
	}

	domains, err := s.repo.ListCompanyDomains(ctx, s.db, id)
	if err != nil {
		return domain.Company{}, err
	}
	company.Domains = domains
	return *company, nil
}

func (s *Service) CreateCompany(ctx context.Context, req domain.CreateCompanyRequest) (domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Company{}, domain.ErrInvalidName
	}

	domains := make([]string, 0, len(req.Domains))
	seen := make(map[string]struct{}, len(req.Domains))
	for _, raw := range req.Domains {
		value := strings.ToLower(strings.TrimSpace(raw))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		domains = append(domains, value)
	}
	if len(domains) == 0 {
		return domain.Company{}, domain.ErrInvalidCompany
	}

	company := domain.Company{
		ID:        s.genID.Generate(),
		Name:      name,
		Domains:   domains,
		CreatedAt: s.clock.Now(),
	}
	if ref := strings.TrimSpace(req.ExternalOrgRef); ref != "" {
		company.ExternalOrgRef = &ref
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertCompany(ctx, tx, &company); err != nil {
			return err
		}
		for _, value := range domains {
			if err := s.repo.InsertCompanyDomain(ctx, tx, company.ID, value, company.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Company{}, domain.ErrAlreadyExists
		}
		return domain.Company{}, err
	}

	s.log.Info("company created", zap.String("company_id", company.ID.String()), zap.Strings("domains", domains))
	return company, nil
}

func (s *Service) CreateAdmin(ctx context.Context, req domain.CreateAdminRequest) (domain.Admin, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Admin{}, domain.ErrInvalidEmail
	}
	if err := s.ensureCompany(ctx, req.CompanyID); err != nil {
		return domain.Admin{}, err
	}

	admin := domain.Admin{
		ID:        s.genID.Generate(),
		Email:     email,
		CompanyID: req.CompanyID,
		Active:    true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertAdmin(ctx, s.db, &admin); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Admin{}, domain.ErrAlreadyExists
		}
		return domain.Admin{}, err
	}
	return admin, nil
}

func (s *Service) CreateManager(ctx context.Context, req domain.CreateManagerRequest) (domain.ManagerProfile, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.ManagerProfile{}, domain.ErrInvalidEmail
	}
	ref := strings.TrimSpace(req.ExternalIdentityRef)
	if ref == "" {
		return domain.ManagerProfile{}, domain.ErrInvalidIdentity
	}
	if err := s.ensureCompany(ctx, req.CompanyID); err != nil {
		return domain.ManagerProfile{}, err
	}

	manager := domain.ManagerProfile{
		ID:                  s.genID.Generate(),
		Email:               email,
		ExternalIdentityRef: ref,
		CompanyID:           req.CompanyID,
		CreatedAt:           s.clock.Now(),
	}
	if err := s.repo.InsertManager(ctx, s.db, &manager); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ManagerProfile{}, domain.ErrAlreadyExists
		}
		return domain.ManagerProfile{}, err
	}
	return manager, nil
}

func (s *Service) SetAdminActive(ctx context.Context, email string, active bool) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.ErrInvalidEmail
	}

	affected, err := s.repo.UpdateAdminActive(ctx, s.db, email, active)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

// DeleteManager soft-deletes a manager profile. Campaigns it created keep their
// created_by ref but no longer resolve.
func (s *Service) DeleteManager(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.ErrInvalidIdentity
	}

	affected, err := s.repo.SoftDeleteManager(ctx, s.db, ref, s.clock.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrIdentityNotFound
	}
	s.log.Info("manager profile deleted", zap.String("identity_ref", ref))
	return nil
}

func (s *Service) ensureCompany(ctx context.Context, companyID snowflake.ID) error {
	if companyID == 0 {
		return domain.ErrInvalidCompany
	}
	company, err := s.repo.FindCompanyByID(ctx, s.db, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return domain.ErrCompanyNotFound
	}
	return nil
}
