package service

import (
	"context"
	"errors"

	"github.com/smallbiznis/pulse/internal/authorization"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	"github.com/smallbiznis/pulse/internal/observability/logger"
	rosterdomain "github.com/smallbiznis/pulse/internal/roster/domain"
	"github.com/smallbiznis/pulse/internal/visibility/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       domain.Repository
	Directory  identitydomain.Directory
	Authorizer authorization.Service
	Roster     rosterdomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	directory  identitydomain.Directory
	authorizer authorization.Service
	roster     rosterdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("visibility.service"),
		repo:       p.Repo,
		directory:  p.Directory,
		authorizer: p.Authorizer,
		roster:     p.Roster,
	}
}

func (s *Service) AdminView(ctx context.Context, req domain.AdminViewRequest) (domain.AdminView, error) {
	if req.CompanyID == 0 {
		return domain.AdminView{}, domain.ErrInvalidCompany
	}
	if req.Viewer.Kind != identitydomain.KindAdmin {
		return domain.AdminView{}, domain.ErrNotAuthorized
	}

	admin, err := s.directory.ResolveAdmin(ctx, req.Viewer.Ref)
	if err != nil {
		return domain.AdminView{}, asNotAuthorized(err)
	}
	subject := authorization.Subject{Role: authorization.RoleAdmin, Ref: admin.Email, CompanyID: admin.CompanyID}
	if err := s.authorizer.Authorize(ctx, subject, authorization.ObjectOverview, authorization.ActionOverviewAdmin); err != nil {
		return domain.AdminView{}, asNotAuthorized(err)
	}
	ok, err := s.directory.IsCompanyAdmin(ctx, admin.Email, req.CompanyID)
	if err != nil {
		return domain.AdminView{}, err
	}
	if !ok {
		return domain.AdminView{}, domain.ErrNotAuthorized
	}

	campaigns, err := s.repo.OrgWideCampaigns(ctx, s.db, req.CompanyID)
	if err != nil {
		return domain.AdminView{}, err
	}
	results, err := s.repo.OrgWideResults(ctx, s.db, req.CompanyID)
	if err != nil {
		return domain.AdminView{}, err
	}

	logger.WithContext(ctx, s.log).Debug("admin view served",
		zap.String("company_id", req.CompanyID.String()),
		zap.Int("campaigns", len(campaigns)),
		zap.Int("results", len(results)),
	)
	return domain.AdminView{Campaigns: campaigns, Results: results}, nil
}

func (s *Service) ManagerView(ctx context.Context, req domain.ManagerViewRequest) (domain.ManagerView, error) {
	if req.Viewer.Kind != identitydomain.KindManager {
		return domain.ManagerView{}, domain.ErrNotAuthorized
	}

	manager, err := s.directory.ResolveManager(ctx, req.Viewer.Ref)
	if err != nil {
		return domain.ManagerView{}, asNotAuthorized(err)
	}
	subject := authorization.Subject{Role: authorization.RoleManager, Ref: manager.ExternalIdentityRef, CompanyID: manager.CompanyID}
	if err := s.authorizer.Authorize(ctx, subject, authorization.ObjectOverview, authorization.ActionOverviewManager); err != nil {
		return domain.ManagerView{}, asNotAuthorized(err)
	}

	campaigns, err := s.repo.PeerSharedCampaigns(ctx, s.db, manager.ExternalIdentityRef)
	if err != nil {
		return domain.ManagerView{}, err
	}
	results, err := s.repo.PeerSharedResults(ctx, s.db, manager.ExternalIdentityRef)
	if err != nil {
		return domain.ManagerView{}, err
	}
	roster, err := s.roster.ListRoster(ctx, manager.ID)
	if err != nil {
		return domain.ManagerView{}, err
	}

	return domain.ManagerView{Campaigns: campaigns, Results: results, Roster: roster}, nil
}

func asNotAuthorized(err error) error {
	if errors.Is(err, identitydomain.ErrIdentityNotFound) || errors.Is(err, authorization.ErrForbidden) {
		return domain.ErrNotAuthorized
	}
	return err
}
