package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cenkalti/backoff/v5"
	assessmentdomain "github.com/smallbiznis/pulse/internal/assessment/domain"
	campaigndomain "github.com/smallbiznis/pulse/internal/campaign/domain"
	"github.com/smallbiznis/pulse/internal/clock"
	"github.com/smallbiznis/pulse/internal/config"
	"github.com/smallbiznis/pulse/internal/errs"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	invitationdomain "github.com/smallbiznis/pulse/internal/invitation/domain"
	"github.com/smallbiznis/pulse/internal/observability/logger"
	"github.com/smallbiznis/pulse/internal/observability/metrics"
	"github.com/smallbiznis/pulse/internal/roster/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultMaxTries     = 3
	retryInitialBackoff = 50 * time.Millisecond
	retryMaxBackoff     = time.Second
	retryTimeout        = 30 * time.Second
)

// Skip reasons reported in LinkOutcome.Reason.
const (
	ReasonNoCampaign        = "no_campaign"
	ReasonOrgWide           = "org_wide"
	ReasonCreatorNotManager = "creator_not_manager"
	ReasonCreatorUnresolved = "creator_unresolved"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Config    config.Config
	Repo      domain.Repository
	Campaigns campaigndomain.Service
	Directory identitydomain.Directory
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	campaigns  invitationdomain.CampaignLookup
	directory  identitydomain.Directory
	metrics    *metrics.Metrics
	maxTries   int
	newBackOff func() backoff.BackOff

	retryTimeout time.Duration
	baseCtx      context.Context
	cancel       context.CancelFunc
	inflight     sync.WaitGroup
}

func New(p Params) *Service {
	maxTries := p.Config.Linking.MaxTries
	if maxTries <= 0 {
		maxTries = defaultMaxTries
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("roster.linker"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		campaigns:    p.Campaigns,
		directory:    p.Directory,
		metrics:      p.Metrics,
		maxTries:     maxTries,
		newBackOff:   newRetryBackOff,
		retryTimeout: retryTimeout,
		baseCtx:      baseCtx,
		cancel:       cancel,
	}
}

func newRetryBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialBackoff
	b.MaxInterval = retryMaxBackoff
	return b
}

func (s *Service) Link(ctx context.Context, result assessmentdomain.Result, invitation invitationdomain.Invitation) (domain.LinkOutcome, error) {
	log := logger.WithContext(ctx, s.log).With(
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("result_id", result.ID.String()),
	)

	campaign, err := s.campaigns.GetByCode(ctx, invitation.InviteCode)
	if err != nil {
		if errors.Is(err, campaigndomain.ErrNotFound) {
			return skipped(ReasonNoCampaign), nil
		}
		return domain.LinkOutcome{}, err
	}
	if campaign.Kind != campaigndomain.KindPeerShared {
		return skipped(ReasonOrgWide), nil
	}
	if campaign.CreatorKind != campaigndomain.CreatorManager {
		log.Warn("peer shared campaign without manager creator", zap.String("campaign_id", campaign.ID.String()))
		return skipped(ReasonCreatorNotManager), nil
	}

	manager, err := s.directory.ResolveManager(ctx, campaign.CreatedBy)
	if err != nil {
		if errors.Is(err, identitydomain.ErrIdentityNotFound) {
			log.Warn("campaign creator not resolvable, roster not linked",
				zap.String("campaign_id", campaign.ID.String()),
			)
			return skipped(ReasonCreatorUnresolved), nil
		}
		return domain.LinkOutcome{}, err
	}

	email := identitydomain.NormalizeEmail(result.SubmitterEmail)
	if email == "" && !invitation.IsGeneric {
		email = identitydomain.NormalizeEmail(invitation.Email)
	}
	if email == "" {
		return domain.LinkOutcome{}, domain.ErrMissingEmail
	}

	name := strings.TrimSpace(result.SubmitterName)
	var role string
	if !invitation.IsGeneric {
		if name == "" {
			name = invitation.Name
		}
		if invitation.Metadata != nil {
			role = invitation.Metadata.Role
		}
	}

	now := s.clock.Now()
	member, memberCreated, err := s.repo.InsertMemberIfAbsent(ctx, s.db, &domain.TeamMember{
		ID:        s.genID.Generate(),
		ManagerID: manager.ID,
		CompanyID: manager.CompanyID,
		Name:      name,
		Email:     email,
		Role:      role,
		Status:    domain.MemberActive,
		CreatedAt: now,
	})
	if err != nil {
		return domain.LinkOutcome{}, err
	}

	_, membershipCreated, err := s.repo.InsertMembershipIfAbsent(ctx, s.db, &domain.TeamMembership{
		ID:           s.genID.Generate(),
		TeamMemberID: member.ID,
		TeamOwnerID:  manager.ID,
		CreatedAt:    now,
	})
	if err != nil {
		return domain.LinkOutcome{}, err
	}

	outcome := domain.LinkOutcome{
		Result:            metrics.LinkExisting,
		TeamMemberID:      member.ID,
		MemberCreated:     memberCreated,
		MembershipCreated: membershipCreated,
	}
	if memberCreated || membershipCreated {
		outcome.Result = metrics.LinkCreated
		log.Info("roster linked",
			zap.String("manager_id", manager.ID.String()),
			zap.String("team_member_id", member.ID.String()),
		)
	}
	return outcome, nil
}

// OnCompletion makes one linking attempt inline. Transient failures are
// retried in the background so the submission is never held up by the roster.
func (s *Service) OnCompletion(ctx context.Context, result assessmentdomain.Result, invitation invitationdomain.Invitation) {
	outcome, err := s.Link(ctx, result, invitation)
	if err == nil {
		s.metrics.RecordLinkOutcome(outcome.Result)
		return
	}
	if errs.KindOf(err) != nil || s.maxTries <= 1 || s.baseCtx.Err() != nil {
		s.deferred(ctx, result, invitation, err)
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.retry(context.WithoutCancel(ctx), result, invitation)
	}()
}

func (s *Service) retry(ctx context.Context, result assessmentdomain.Result, invitation invitationdomain.Invitation) {
	ctx, cancel := context.WithTimeout(ctx, s.retryTimeout)
	defer cancel()
	stop := context.AfterFunc(s.baseCtx, cancel)
	defer stop()

	outcome, err := backoff.Retry(ctx, func() (domain.LinkOutcome, error) {
		outcome, err := s.Link(ctx, result, invitation)
		if err != nil && errs.KindOf(err) != nil {
			return outcome, backoff.Permanent(err)
		}
		return outcome, err
	}, backoff.WithBackOff(s.newBackOff()), backoff.WithMaxTries(uint(s.maxTries-1)))
	if err != nil {
		s.deferred(ctx, result, invitation, err)
		return
	}
	s.metrics.RecordLinkOutcome(outcome.Result)
}

func (s *Service) deferred(ctx context.Context, result assessmentdomain.Result, invitation invitationdomain.Invitation, err error) {
	s.metrics.RecordLinkOutcome(metrics.LinkDeferred)
	logger.WithContext(ctx, s.log).Warn("roster linking deferred",
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("result_id", result.ID.String()),
		zap.Error(errors.Join(domain.ErrDeferred, err)),
	)
}

// Wait blocks until background retries have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Stop cancels pending retries and waits for them to record their outcome.
func (s *Service) Stop(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) ListRoster(ctx context.Context, managerID snowflake.ID) ([]domain.TeamMember, error) {
	if managerID == 0 {
		return nil, domain.ErrInvalidManager
	}
	return s.repo.ListByManager(ctx, s.db, managerID)
}

func skipped(reason string) domain.LinkOutcome {
	return domain.LinkOutcome{Result: metrics.LinkSkipped, Reason: reason}
}
