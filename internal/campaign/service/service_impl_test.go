package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/pulse/internal/campaign/domain"
	"github.com/smallbiznis/pulse/internal/campaign/repository"
	"github.com/smallbiznis/pulse/internal/codegen"
	"github.com/smallbiznis/pulse/internal/errs"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	identitymock "github.com/smallbiznis/pulse/internal/identity/domain/mock"
	"github.com/smallbiznis/pulse/internal/testutil/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCodes struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (g *scriptedCodes) Generate(_ context.Context, _ int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}

func newParams(env *fixture.Env) Params {
	return Params{
		DB:         env.DB,
		Log:        env.Log,
		GenID:      env.Node,
		Clock:      env.Clock,
		Config:     env.Config,
		Repo:       repository.Provide(),
		Directory:  env.Directory,
		Authorizer: env.Authorizer,
		Metrics:    env.Metrics,
	}
}

func newTestService(t *testing.T) (*Service, *fixture.Env) {
	t.Helper()
	env := fixture.New(t)
	return NewWith(newParams(env), env.Codes, env.Tools), env
}

func validRequest(env *fixture.Env, creator identitydomain.Identity, kind domain.Kind) domain.CreateCampaignRequest {
	start := env.Clock.Now()
	return domain.CreateCampaignRequest{
		CompanyID: env.Company.ID,
		Creator:   creator,
		Kind:      kind,
		ToolID:    "team-health",
		Name:      "Q2 team health",
		StartDate: start,
		EndDate:   start.Add(14 * 24 * time.Hour),
		Message:   "Thanks for taking part",
	}
}

func TestCreateOrgWideByAdmin(t *testing.T) {
	svc, env := newTestService(t)

	campaign, err := svc.Create(context.Background(), validRequest(env, env.AdminIdentity(), domain.KindOrgWide))
	require.NoError(t, err)

	assert.Len(t, campaign.Code, codegen.DefaultLength)
	assert.Equal(t, fixture.BaseURL+"/assessments/team-health-check?code="+campaign.Code, campaign.ShareLink)
	assert.Equal(t, domain.StatusDraft, campaign.Status)
	assert.Equal(t, domain.CreatorAdmin, campaign.CreatorKind)
	assert.Equal(t, fixture.AdminEmail, campaign.CreatedBy)

	stored, err := svc.GetByID(context.Background(), campaign.ID)
	require.NoError(t, err)
	meta := stored.Metadata.Data()
	assert.Equal(t, domain.MetadataVersion, meta.Version)
	assert.Equal(t, campaign.ShareLink, meta.Link)
	assert.Equal(t, "Team Health Check", meta.ToolName)
	assert.Equal(t, "Thanks for taking part", meta.Message)
	assert.Equal(t, domain.KindOrgWide, stored.Kind)

	assert.Equal(t, 1.0, env.CounterValue(t, "pulse_campaigns_created_total"))
}

func TestCreatePeerSharedByManager(t *testing.T) {
	svc, env := newTestService(t)

	campaign, err := svc.Create(context.Background(), validRequest(env, env.ManagerIdentity(), domain.KindPeerShared))
	require.NoError(t, err)
	assert.Equal(t, domain.KindPeerShared, campaign.Kind)
	assert.Equal(t, domain.CreatorManager, campaign.CreatorKind)
	assert.Equal(t, fixture.ManagerRef, campaign.CreatedBy)
}

func TestCreateEnforcesCreatorKindMatrix(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest(env, env.AdminIdentity(), domain.KindPeerShared))
	require.ErrorIs(t, err, domain.ErrKindNotAllowed)
	assert.ErrorIs(t, err, errs.ErrAuthorization)

	_, err = svc.Create(ctx, validRequest(env, env.ManagerIdentity(), domain.KindOrgWide))
	require.ErrorIs(t, err, domain.ErrKindNotAllowed)
}

func TestCreateRejectsCreatorFromAnotherCompany(t *testing.T) {
	svc, env := newTestService(t)
	_, otherAdmin, otherManager := env.SeedCompany(t, "Globex", "globex.com", "ops@globex.com", "idp|globex")
	ctx := context.Background()

	req := validRequest(env, identitydomain.Identity{Kind: identitydomain.KindAdmin, Ref: otherAdmin.Email}, domain.KindOrgWide)
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	req = validRequest(env, identitydomain.Identity{Kind: identitydomain.KindManager, Ref: otherManager.ExternalIdentityRef}, domain.KindPeerShared)
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestCreateRejectsInactiveAdmin(t *testing.T) {
	svc, env := newTestService(t)
	require.NoError(t, env.Directory.SetAdminActive(context.Background(), fixture.AdminEmail, false))

	_, err := svc.Create(context.Background(), validRequest(env, env.AdminIdentity(), domain.KindOrgWide))
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestCreateValidation(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	cases := map[string]struct {
		mutate func(*domain.CreateCampaignRequest)
		want   error
	}{
		"empty name":    {func(r *domain.CreateCampaignRequest) { r.Name = "  " }, domain.ErrInvalidName},
		"unknown kind":  {func(r *domain.CreateCampaignRequest) { r.Kind = "TEAM" }, domain.ErrInvalidKind},
		"start > end":   {func(r *domain.CreateCampaignRequest) { r.StartDate = r.EndDate.Add(time.Hour) }, domain.ErrInvalidWindow},
		"unknown tool":  {func(r *domain.CreateCampaignRequest) { r.ToolID = "horoscope" }, domain.ErrUnknownTool},
		"no company":    {func(r *domain.CreateCampaignRequest) { r.CompanyID = 0 }, domain.ErrInvalidCompany},
		"creator kind":  {func(r *domain.CreateCampaignRequest) { r.Creator.Kind = "guest" }, domain.ErrInvalidCreator},
		"missing dates": {func(r *domain.CreateCampaignRequest) { r.StartDate = time.Time{} }, domain.ErrInvalidWindow},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest(env, env.AdminIdentity(), domain.KindOrgWide)
			tc.mutate(&req)
			_, err := svc.Create(ctx, req)
			require.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestCreateAcceptsLowercaseKind(t *testing.T) {
	svc, env := newTestService(t)

	campaign, err := svc.Create(context.Background(), validRequest(env, env.AdminIdentity(), "org_wide"))
	require.NoError(t, err)
	assert.Equal(t, domain.KindOrgWide, campaign.Kind)
}

func TestCreateRegeneratesCodeAfterInsertCollision(t *testing.T) {
	env := fixture.New(t)
	codes := &scriptedCodes{codes: []string{"DUPL2345", "DUPL2345", "FRSH2345"}}
	svc := NewWith(newParams(env), codes, env.Tools)
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest(env, env.AdminIdentity(), domain.KindOrgWide))
	require.NoError(t, err)
	assert.Equal(t, "DUPL2345", first.Code)

	second, err := svc.Create(ctx, validRequest(env, env.AdminIdentity(), domain.KindOrgWide))
	require.NoError(t, err)
	assert.Equal(t, "FRSH2345", second.Code)
}

func TestCreateSurfacesCodeExhaustion(t *testing.T) {
	env := fixture.New(t)
	svc := NewWith(newParams(env), &scriptedCodes{err: codegen.ErrExhausted}, env.Tools)

	_, err := svc.Create(context.Background(), validRequest(env, env.AdminIdentity(), domain.KindOrgWide))
	require.ErrorIs(t, err, domain.ErrCodeExhausted)
	assert.True(t, errs.IsRetryable(err))
}

func TestCreateWithUnresolvableManagerUsesDirectory(t *testing.T) {
	env := fixture.New(t)
	ctrl := gomock.NewController(t)
	directory := identitymock.NewMockDirectory(ctrl)
	directory.EXPECT().
		ResolveManager(gomock.Any(), "idp|ghost").
		Return(identitydomain.ManagerProfile{}, identitydomain.ErrIdentityNotFound)

	params := newParams(env)
	params.Directory = directory
	svc := NewWith(params, &scriptedCodes{codes: []string{"NEVR2345"}}, env.Tools)

	req := validRequest(env, identitydomain.Identity{Kind: identitydomain.KindManager, Ref: "idp|ghost"}, domain.KindPeerShared)
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestSetStatusIsForwardOnly(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	campaign, err := svc.Create(ctx, validRequest(env, env.AdminIdentity(), domain.KindOrgWide))
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, campaign.ID, domain.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, updated.Status)

	updated, err = svc.SetStatus(ctx, campaign.ID, domain.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, updated.Status)

	updated, err = svc.SetStatus(ctx, campaign.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	_, err = svc.SetStatus(ctx, campaign.ID, domain.StatusActive)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	stored, err := svc.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, 2.0, env.CounterValue(t, "pulse_campaign_transitions_total"))
}

func TestSetStatusSkipsForward(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	campaign, err := svc.Create(ctx, validRequest(env, env.AdminIdentity(), domain.KindOrgWide))
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, campaign.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
}

func TestSetStatusRejectsUnknownStatusAndCampaign(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	campaign, err := svc.Create(ctx, validRequest(env, env.AdminIdentity(), domain.KindOrgWide))
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, campaign.ID, "ARCHIVED")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.SetStatus(ctx, env.Node.Generate(), domain.StatusActive)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByCodeIsCaseInsensitive(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	campaign, err := svc.Create(ctx, validRequest(env, env.ManagerIdentity(), domain.KindPeerShared))
	require.NoError(t, err)

	found, err := svc.GetByCode(ctx, "  "+strings.ToLower(campaign.Code)+" ")
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, found.ID)

	_, err = svc.GetByCode(ctx, "ZZZZ9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCanManage(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()
	_, otherAdmin, otherManager := env.SeedCompany(t, "Globex", "globex.com", "ops@globex.com", "idp|globex")

	orgWide, err := svc.Create(ctx, validRequest(env, env.AdminIdentity(), domain.KindOrgWide))
	require.NoError(t, err)
	peer, err := svc.Create(ctx, validRequest(env, env.ManagerIdentity(), domain.KindPeerShared))
	require.NoError(t, err)

	assert.NoError(t, svc.CanManage(ctx, env.AdminIdentity(), orgWide))
	assert.ErrorIs(t, svc.CanManage(ctx, env.ManagerIdentity(), orgWide), domain.ErrNotAuthorized)
	assert.ErrorIs(t, svc.CanManage(ctx, identitydomain.Identity{Kind: identitydomain.KindAdmin, Ref: otherAdmin.Email}, orgWide), domain.ErrNotAuthorized)

	assert.NoError(t, svc.CanManage(ctx, env.ManagerIdentity(), peer))
	assert.ErrorIs(t, svc.CanManage(ctx, env.AdminIdentity(), peer), domain.ErrNotAuthorized)
	assert.ErrorIs(t, svc.CanManage(ctx, identitydomain.Identity{Kind: identitydomain.KindManager, Ref: otherManager.ExternalIdentityRef}, peer), domain.ErrNotAuthorized)
}
