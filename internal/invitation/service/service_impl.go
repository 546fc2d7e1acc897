package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	assessmentdomain "github.com/smallbiznis/pulse/internal/assessment/domain"
	auditdomain "github.com/smallbiznis/pulse/internal/audit/domain"
	"github.com/smallbiznis/pulse/internal/authorization"
	campaigndomain "github.com/smallbiznis/pulse/internal/campaign/domain"
	"github.com/smallbiznis/pulse/internal/clock"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	"github.com/smallbiznis/pulse/internal/invitation/domain"
	"github.com/smallbiznis/pulse/internal/observability/logger"
	"github.com/smallbiznis/pulse/internal/observability/metrics"
	"github.com/smallbiznis/pulse/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// unknownToolID is recorded when a completion's invite code no longer
// resolves to a campaign.
const unknownToolID = "unknown"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Campaigns  campaigndomain.Service
	Results    assessmentdomain.Service
	Directory  identitydomain.Directory
	Authorizer authorization.Service
	AuditSvc   auditdomain.Service
	Listener   domain.CompletionListener `optional:"true"`
	Metrics    *metrics.Metrics          `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	campaigns  domain.CampaignLookup
	results    assessmentdomain.Service
	directory  identitydomain.Directory
	authorizer authorization.Service
	auditSvc   auditdomain.Service
	listener   domain.CompletionListener
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invitation.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		campaigns:  p.Campaigns,
		results:    p.Results,
		directory:  p.Directory,
		authorizer: p.Authorizer,
		auditSvc:   p.AuditSvc,
		listener:   p.Listener,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvitationRequest) (domain.Invitation, bool, error) {
	if req.CompanyID == 0 {
		return domain.Invitation{}, false, domain.ErrInvalidCompany
	}

	campaign, err := s.resolveCampaign(ctx, req.InviteCode)
	if err != nil {
		return domain.Invitation{}, false, err
	}
	if campaign == nil {
		return domain.Invitation{}, false, domain.ErrUnknownInviteCode
	}
	if campaign.CompanyID != req.CompanyID {
		return domain.Invitation{}, false, domain.ErrCompanyMismatch
	}

	generic := req.Metadata != nil && req.Metadata.GenericLink
	email := identitydomain.NormalizeEmail(req.Email)
	if !generic && (email == "" || !strings.Contains(email, "@")) {
		return domain.Invitation{}, false, domain.ErrInvalidEmail
	}

	now := s.clock.Now()
	invitation := domain.Invitation{
		ID:         s.genID.Generate(),
		CompanyID:  req.CompanyID,
		Email:      email,
		Name:       strings.TrimSpace(req.Name),
		InviteCode: campaign.Code,
		Status:     domain.StatusPending,
		IsGeneric:  generic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var metadata *domain.Metadata
	if req.Metadata != nil {
		metadata = &domain.Metadata{
			InvitationID: invitation.ID,
			Role:         strings.TrimSpace(req.Metadata.Role),
			Department:   strings.TrimSpace(req.Metadata.Department),
			TeamSize:     req.Metadata.TeamSize,
			GenericLink:  req.Metadata.GenericLink,
			CreatedAt:    now,
		}
	}

	log := logger.WithContext(ctx, s.log)

	if generic {
		return s.createGeneric(ctx, log, invitation, metadata)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &invitation); err != nil {
			return err
		}
		if metadata != nil {
			return s.repo.InsertMetadata(ctx, tx, metadata)
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invitation{}, false, domain.ErrDuplicateInvitation
		}
		return domain.Invitation{}, false, err
	}

	invitation.Metadata = metadata
	log.Info("invitation created",
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("invite_code", invitation.InviteCode),
	)
	return invitation, true, nil
}

func (s *Service) createGeneric(ctx context.Context, log *zap.Logger, invitation domain.Invitation, metadata *domain.Metadata) (domain.Invitation, bool, error) {
	var (
		shared  *domain.Invitation
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.repo.InsertGeneric(ctx, tx, &invitation)
		if err != nil {
			return err
		}
		created = inserted

		shared, err = s.repo.FindGenericByCode(ctx, tx, invitation.InviteCode)
		if err != nil {
			return err
		}
		if shared == nil {
			return domain.ErrNotFound
		}

		if created && metadata != nil {
			metadata.InvitationID = shared.ID
			if err := s.repo.InsertMetadata(ctx, tx, metadata); err != nil {
				return err
			}
		}
		shared.Metadata, err = s.repo.FindMetadata(ctx, tx, shared.ID)
		return err
	})
	if err != nil {
		return domain.Invitation{}, false, err
	}

	if created {
		log.Info("generic invitation created",
			zap.String("invitation_id", shared.ID.String()),
			zap.String("invite_code", shared.InviteCode),
		)
	}
	return *shared, created, nil
}

func (s *Service) Advance(ctx context.Context, id snowflake.ID, target domain.Status) (domain.Invitation, error) {
	if id == 0 {
		return domain.Invitation{}, domain.ErrInvalidID
	}
	target, err := domain.ParseStatus(string(target))
	if err != nil {
		return domain.Invitation{}, err
	}

	var (
		updated  domain.Invitation
		advanced bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, advanced, err = s.advance(ctx, tx, id, target)
		return err
	})
	if err != nil {
		return domain.Invitation{}, err
	}
	if advanced {
		s.metrics.RecordInvitationTransition(string(target))
	}
	return updated, nil
}

// advance moves the invitation forward within tx and reports whether a row
// changed.
func (s *Service) advance(ctx context.Context, tx *gorm.DB, id snowflake.ID, target domain.Status) (domain.Invitation, bool, error) {
	current, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return domain.Invitation{}, false, err
	}
	if current == nil {
		return domain.Invitation{}, false, domain.ErrNotFound
	}
	if current.Status == target {
		return *current, false, nil
	}
	if target.Before(current.Status) {
		return domain.Invitation{}, false, domain.ErrInvalidTransition
	}

	now := s.clock.Now()
	affected, err := s.repo.AdvanceStatus(ctx, tx, id, target.Predecessors(), target, stampsFor(target, now), now)
	if err != nil {
		return domain.Invitation{}, false, err
	}

	latest, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return domain.Invitation{}, false, err
	}
	if latest == nil {
		return domain.Invitation{}, false, domain.ErrNotFound
	}
	if affected == 0 && latest.Status != target {
		return domain.Invitation{}, false, domain.ErrInvalidTransition
	}
	return *latest, affected > 0, nil
}

// stampsFor stamps target and every step it skips over.
func stampsFor(target domain.Status, now time.Time) domain.Stamps {
	var stamps domain.Stamps
	for _, status := range domain.Lifecycle {
		if target.Before(status) {
			break
		}
		switch status {
		case domain.StatusSent:
			stamps.SentAt = &now
		case domain.StatusOpened:
			stamps.OpenedAt = &now
		case domain.StatusStarted:
			stamps.StartedAt = &now
		case domain.StatusCompleted:
			stamps.CompletedAt = &now
		}
	}
	return stamps
}

func (s *Service) Reset(ctx context.Context, req domain.ResetRequest) (domain.Invitation, error) {
	if req.InvitationID == 0 {
		return domain.Invitation{}, domain.ErrInvalidID
	}
	if req.Admin.Kind != identitydomain.KindAdmin {
		return domain.Invitation{}, domain.ErrNotAuthorized
	}

	admin, err := s.directory.ResolveAdmin(ctx, req.Admin.Ref)
	if err != nil {
		if errors.Is(err, identitydomain.ErrIdentityNotFound) {
			return domain.Invitation{}, domain.ErrNotAuthorized
		}
		return domain.Invitation{}, err
	}
	subject := authorization.Subject{Role: authorization.RoleAdmin, Ref: admin.Email, CompanyID: admin.CompanyID}
	if err := s.authorizer.Authorize(ctx, subject, authorization.ObjectInvitation, authorization.ActionInvitationReset); err != nil {
		return domain.Invitation{}, err
	}

	current, err := s.repo.FindByID(ctx, s.db, req.InvitationID)
	if err != nil {
		return domain.Invitation{}, err
	}
	if current == nil {
		return domain.Invitation{}, domain.ErrNotFound
	}
	if current.CompanyID != admin.CompanyID {
		return domain.Invitation{}, domain.ErrNotAuthorized
	}

	campaign, err := s.resolveCampaign(ctx, current.InviteCode)
	if err != nil {
		return domain.Invitation{}, err
	}
	if campaign != nil && campaign.Kind == campaigndomain.KindPeerShared {
		return domain.Invitation{}, domain.ErrNotAuthorized
	}

	now := s.clock.Now()
	affected, err := s.repo.Reset(ctx, s.db, current.ID, now)
	if err != nil {
		return domain.Invitation{}, err
	}
	if affected == 0 {
		return domain.Invitation{}, domain.ErrNotFound
	}

	reset, err := s.repo.FindByID(ctx, s.db, current.ID)
	if err != nil {
		return domain.Invitation{}, err
	}
	if reset == nil {
		return domain.Invitation{}, domain.ErrNotFound
	}

	s.metrics.RecordInvitationReset()
	companyID := admin.CompanyID
	targetID := current.ID.String()
	actorID := admin.Email
	if err := s.auditSvc.AuditLog(ctx, &companyID, string(auditdomain.ActorTypeAdmin), &actorID, "invitation.reset", "invitation", &targetID, map[string]any{
		"reason":          strings.TrimSpace(req.Reason),
		"previous_status": string(current.Status),
		"email":           current.Email,
		"reset_count":     reset.ResetCount,
	}); err != nil {
		logger.WithContext(ctx, s.log).Warn("invitation reset not audited", zap.Error(err))
	}

	return *reset, nil
}

func (s *Service) RecordCompletion(ctx context.Context, event domain.CompletionEvent) (assessmentdomain.Result, error) {
	if event.InvitationID == 0 {
		return assessmentdomain.Result{}, domain.ErrInvalidID
	}

	invitation, err := s.Get(ctx, event.InvitationID)
	if err != nil {
		return assessmentdomain.Result{}, err
	}

	toolID := unknownToolID
	campaign, err := s.resolveCampaign(ctx, invitation.InviteCode)
	if err != nil {
		return assessmentdomain.Result{}, err
	}
	if campaign != nil {
		toolID = campaign.ToolID
	}

	name := strings.TrimSpace(event.SubmitterName)
	email := strings.TrimSpace(event.SubmitterEmail)
	if !invitation.IsGeneric {
		if name == "" {
			name = invitation.Name
		}
		if email == "" {
			email = invitation.Email
		}
	}

	var (
		completed domain.Invitation
		advanced  bool
		result    assessmentdomain.Result
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		completed, advanced, err = s.advance(ctx, tx, invitation.ID, domain.StatusCompleted)
		if err != nil {
			return err
		}
		result, err = s.results.RecordTx(ctx, tx, assessmentdomain.RecordRequest{
			InvitationID:   invitation.ID,
			ToolID:         toolID,
			SubmitterName:  name,
			SubmitterEmail: email,
			Responses:      event.Payload.Responses,
			Scores:         event.Payload.Scores,
		})
		return err
	})
	if err != nil {
		return assessmentdomain.Result{}, err
	}
	completed.Metadata = invitation.Metadata

	if advanced {
		s.metrics.RecordInvitationTransition(string(domain.StatusCompleted))
	}
	s.metrics.RecordCompletion(toolID)
	logger.WithContext(ctx, s.log).Info("completion recorded",
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("result_id", result.ID.String()),
		zap.Bool("generic", invitation.IsGeneric),
	)

	if s.listener != nil {
		s.listener.OnCompletion(ctx, result, completed)
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Invitation, error) {
	if id == 0 {
		return domain.Invitation{}, domain.ErrInvalidID
	}

	invitation, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Invitation{}, err
	}
	if invitation == nil {
		return domain.Invitation{}, domain.ErrNotFound
	}

	invitation.Metadata, err = s.repo.FindMetadata(ctx, s.db, id)
	if err != nil {
		return domain.Invitation{}, err
	}
	return *invitation, nil
}

func (s *Service) resolveCampaign(ctx context.Context, code string) (*campaigndomain.Campaign, error) {
	if campaigndomain.NormalizeCode(code) == "" {
		return nil, nil
	}
	campaign, err := s.campaigns.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, campaigndomain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}
