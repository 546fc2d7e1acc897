package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/authorization"
	"github.com/smallbiznis/pulse/internal/campaign/domain"
	"github.com/smallbiznis/pulse/internal/clock"
	"github.com/smallbiznis/pulse/internal/codegen"
	"github.com/smallbiznis/pulse/internal/config"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	"github.com/smallbiznis/pulse/internal/observability/logger"
	"github.com/smallbiznis/pulse/internal/observability/metrics"
	"github.com/smallbiznis/pulse/internal/tool"
	"github.com/smallbiznis/pulse/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxInsertAttempts bounds regeneration when a fresh code loses an insert
// race to a concurrent creator.
const maxInsertAttempts = 3

type ToolCatalog interface {
	Lookup(id string) (tool.Tool, bool)
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Config     config.Config
	Repo       domain.Repository
	Directory  identitydomain.Directory
	Authorizer authorization.Service
	Codes      *codegen.Generator
	Tools      *tool.Catalog
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	baseURL    string
	repo       domain.Repository
	directory  identitydomain.Directory
	authorizer authorization.Service
	codes      domain.CodeGenerator
	tools      ToolCatalog
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return NewWith(p, p.Codes, p.Tools)
}

// NewWith builds the service with explicit code and tool collaborators.
func NewWith(p Params, codes domain.CodeGenerator, tools ToolCatalog) *Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("campaign.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		baseURL:    strings.TrimRight(p.Config.PublicBaseURL, "/"),
		repo:       p.Repo,
		directory:  p.Directory,
		authorizer: p.Authorizer,
		codes:      codes,
		tools:      tools,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCampaignRequest) (domain.Campaign, error) {
	if req.CompanyID == 0 {
		return domain.Campaign{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Campaign{}, domain.ErrInvalidName
	}

	kind, err := domain.ParseKind(string(req.Kind))
	if err != nil {
		return domain.Campaign{}, err
	}

	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.StartDate.After(req.EndDate) {
		return domain.Campaign{}, domain.ErrInvalidWindow
	}

	toolItem, ok := s.tools.Lookup(req.ToolID)
	if !ok {
		return domain.Campaign{}, domain.ErrUnknownTool
	}

	creatorKind, createdBy, err := s.authorizeCreator(ctx, req.CompanyID, req.Creator, kind)
	if err != nil {
		return domain.Campaign{}, err
	}

	log := logger.WithContext(ctx, s.log)
	now := s.clock.Now()

	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		code, err := s.codes.Generate(ctx, 0)
		if err != nil {
			if errors.Is(err, codegen.ErrExhausted) {
				return domain.Campaign{}, domain.ErrCodeExhausted
			}
			return domain.Campaign{}, err
		}

		shareLink := s.shareLink(toolItem.Path, code)
		campaign := domain.Campaign{
			ID:          s.genID.Generate(),
			CompanyID:   req.CompanyID,
			Name:        name,
			CreatedBy:   createdBy,
			CreatorKind: creatorKind,
			Kind:        kind,
			Code:        code,
			ShareLink:   shareLink,
			ToolID:      toolItem.ID,
			Status:      domain.StatusDraft,
			StartDate:   req.StartDate.UTC(),
			EndDate:     req.EndDate.UTC(),
			Metadata: datatypes.NewJSONType(domain.Metadata{
				Version:  domain.MetadataVersion,
				Link:     shareLink,
				ToolName: toolItem.Name,
				Message:  strings.TrimSpace(req.Message),
			}),
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := s.repo.Insert(ctx, s.db, &campaign); err != nil {
			if db.IsDuplicateKeyErr(err) {
				log.Warn("campaign code taken on insert, regenerating", zap.Int("attempt", attempt))
				continue
			}
			return domain.Campaign{}, err
		}

		s.metrics.RecordCampaignCreated(string(kind))
		log.Info("campaign created",
			zap.String("campaign_id", campaign.ID.String()),
			zap.String("kind", string(kind)),
			zap.String("tool_id", campaign.ToolID),
		)
		return campaign, nil
	}

	return domain.Campaign{}, domain.ErrCodeExhausted
}

func (s *Service) authorizeCreator(ctx context.Context, companyID snowflake.ID, creator identitydomain.Identity, kind domain.Kind) (domain.CreatorKind, string, error) {
	var (
		creatorKind domain.CreatorKind
		role        string
		ref         string
	)

	switch creator.Kind {
	case identitydomain.KindAdmin:
		admin, err := s.directory.ResolveAdmin(ctx, creator.Ref)
		if err != nil {
			return "", "", asNotAuthorized(err)
		}
		if admin.CompanyID != companyID {
			return "", "", domain.ErrNotAuthorized
		}
		creatorKind, role, ref = domain.CreatorAdmin, authorization.RoleAdmin, admin.Email
	case identitydomain.KindManager:
		manager, err := s.directory.ResolveManager(ctx, creator.Ref)
		if err != nil {
			return "", "", asNotAuthorized(err)
		}
		if manager.CompanyID != companyID {
			return "", "", domain.ErrNotAuthorized
		}
		creatorKind, role, ref = domain.CreatorManager, authorization.RoleManager, manager.ExternalIdentityRef
	default:
		return "", "", domain.ErrInvalidCreator
	}

	action := authorization.ActionCampaignCreateOrgWide
	if kind == domain.KindPeerShared {
		action = authorization.ActionCampaignCreatePeerShared
	}
	err := s.authorizer.Authorize(ctx, authorization.Subject{Role: role, Ref: ref, CompanyID: companyID}, authorization.ObjectCampaign, action)
	if err != nil {
		if errors.Is(err, authorization.ErrForbidden) {
			return "", "", domain.ErrKindNotAllowed
		}
		return "", "", err
	}

	return creatorKind, ref, nil
}

func (s *Service) SetStatus(ctx context.Context, id snowflake.ID, status domain.Status) (domain.Campaign, error) {
	if id == 0 {
		return domain.Campaign{}, domain.ErrInvalidID
	}
	target, err := domain.ParseStatus(string(status))
	if err != nil {
		return domain.Campaign{}, err
	}

	var updated domain.Campaign
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if current.Status == target {
			updated = *current
			return nil
		}
		if !current.Status.Before(target) {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		affected, err := s.repo.AdvanceStatus(ctx, tx, id, target.Predecessors(), target, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Another writer moved the campaign first.
			latest, err := s.repo.FindByID(ctx, tx, id)
			if err != nil {
				return err
			}
			if latest == nil {
				return domain.ErrNotFound
			}
			if latest.Status != target {
				return domain.ErrInvalidTransition
			}
			updated = *latest
			return nil
		}

		current.Status = target
		current.UpdatedAt = now
		updated = *current
		s.metrics.RecordCampaignTransition(string(target))
		return nil
	})
	if err != nil {
		return domain.Campaign{}, err
	}

	logger.WithContext(ctx, s.log).Info("campaign status set",
		zap.String("campaign_id", id.String()),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Campaign, error) {
	if id == 0 {
		return domain.Campaign{}, domain.ErrInvalidID
	}
	campaign, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}
	return *campaign, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Campaign, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		return domain.Campaign{}, domain.ErrNotFound
	}
	campaign, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}
	return *campaign, nil
}

func (s *Service) CanManage(ctx context.Context, caller identitydomain.Identity, campaign domain.Campaign) error {
	switch campaign.Kind {
	case domain.KindOrgWide:
		if caller.Kind != identitydomain.KindAdmin {
			return domain.ErrNotAuthorized
		}
		ok, err := s.directory.IsCompanyAdmin(ctx, caller.Ref, campaign.CompanyID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotAuthorized
		}
		return nil
	case domain.KindPeerShared:
		if caller.Kind != identitydomain.KindManager {
			return domain.ErrNotAuthorized
		}
		manager, err := s.directory.ResolveManager(ctx, caller.Ref)
		if err != nil {
			return asNotAuthorized(err)
		}
		if manager.ExternalIdentityRef != campaign.CreatedBy {
			return domain.ErrNotAuthorized
		}
		return nil
	default:
		return domain.ErrNotAuthorized
	}
}

func (s *Service) shareLink(path, code string) string {
	return s.baseURL + path + "?code=" + url.QueryEscape(code)
}

func asNotAuthorized(err error) error {
	if errors.Is(err, identitydomain.ErrIdentityNotFound) {
		return domain.ErrNotAuthorized
	}
	return err
}
