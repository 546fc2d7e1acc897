package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	auditdomain "github.com/smallbiznis/pulse/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed model.conf
var modelText string

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

const (
	ObjectCampaign   = "campaign"
	ObjectInvitation = "invitation"
	ObjectAuditLog   = "audit_log"
	ObjectOverview   = "overview"
)

const (
	ActionCampaignCreateOrgWide    = "campaign.create_org_wide"
	ActionCampaignCreatePeerShared = "campaign.create_peer_shared"
	ActionCampaignViewOrgWide      = "campaign.view_org_wide"
	ActionCampaignViewPeerShared   = "campaign.view_peer_shared"

	ActionInvitationReset = "invitation.reset"

	ActionAuditLogView = "audit_log.view"

	ActionOverviewAdmin   = "overview.admin"
	ActionOverviewManager = "overview.manager"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

// NewEnforcer builds an in-memory enforcer holding the static role matrix.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, subject Subject, object string, action string) error {
	role := strings.ToLower(strings.TrimSpace(subject.Role))
	if role == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(roleSubject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		s.auditDenied(ctx, subject, role, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) auditDenied(ctx context.Context, subject Subject, role string, object string, action string) {
	if s.auditSvc == nil || subject.CompanyID == 0 {
		return
	}
	companyID := subject.CompanyID
	var actorID *string
	if ref := strings.TrimSpace(subject.Ref); ref != "" {
		actorID = &ref
	}
	targetID := "capability"
	_ = s.auditSvc.AuditLog(ctx, &companyID, role, actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
	})
}

func roleSubject(role string) string {
	return "role:" + role
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{roleSubject(RoleAdmin), ObjectCampaign, ActionCampaignCreateOrgWide},
		{roleSubject(RoleAdmin), ObjectCampaign, ActionCampaignViewOrgWide},
		{roleSubject(RoleAdmin), ObjectInvitation, ActionInvitationReset},
		{roleSubject(RoleAdmin), ObjectAuditLog, ActionAuditLogView},
		{roleSubject(RoleAdmin), ObjectOverview, ActionOverviewAdmin},

		{roleSubject(RoleManager), ObjectCampaign, ActionCampaignCreatePeerShared},
		{roleSubject(RoleManager), ObjectCampaign, ActionCampaignViewPeerShared},
		{roleSubject(RoleManager), ObjectOverview, ActionOverviewManager},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}
