package service

import (
	"context"
	"testing"
	"time"

	assessmentdomain "github.com/smallbiznis/pulse/internal/assessment/domain"
	assessmentrepository "github.com/smallbiznis/pulse/internal/assessment/repository"
	assessmentservice "github.com/smallbiznis/pulse/internal/assessment/service"
	campaigndomain "github.com/smallbiznis/pulse/internal/campaign/domain"
	campaignrepository "github.com/smallbiznis/pulse/internal/campaign/repository"
	campaignservice "github.com/smallbiznis/pulse/internal/campaign/service"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	invitationdomain "github.com/smallbiznis/pulse/internal/invitation/domain"
	invitationrepository "github.com/smallbiznis/pulse/internal/invitation/repository"
	invitationservice "github.com/smallbiznis/pulse/internal/invitation/service"
	rosterrepository "github.com/smallbiznis/pulse/internal/roster/repository"
	rosterservice "github.com/smallbiznis/pulse/internal/roster/service"
	"github.com/smallbiznis/pulse/internal/testutil/fixture"
	"github.com/smallbiznis/pulse/internal/visibility/domain"
	"github.com/smallbiznis/pulse/internal/visibility/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	env         *fixture.Env
	svc         domain.Service
	campaigns   campaigndomain.Service
	invitations invitationdomain.Service
	results     assessmentdomain.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	env := fixture.New(t)

	campaigns := campaignservice.New(campaignservice.Params{
		DB:         env.DB,
		Log:        env.Log,
		GenID:      env.Node,
		Clock:      env.Clock,
		Config:     env.Config,
		Repo:       campaignrepository.Provide(),
		Directory:  env.Directory,
		Authorizer: env.Authorizer,
		Codes:      env.Codes,
		Tools:      env.Tools,
	})
	results := assessmentservice.New(assessmentservice.Params{
		DB:    env.DB,
		Log:   env.Log,
		GenID: env.Node,
		Clock: env.Clock,
		Repo:  assessmentrepository.Provide(),
	})
	roster := rosterservice.New(rosterservice.Params{
		DB:        env.DB,
		Log:       env.Log,
		GenID:     env.Node,
		Clock:     env.Clock,
		Config:    env.Config,
		Repo:      rosterrepository.Provide(),
		Campaigns: campaigns,
		Directory: env.Directory,
	})
	invitations := invitationservice.New(invitationservice.Params{
		DB:         env.DB,
		Log:        env.Log,
		GenID:      env.Node,
		Clock:      env.Clock,
		Repo:       invitationrepository.Provide(),
		Campaigns:  campaigns,
		Results:    results,
		Directory:  env.Directory,
		Authorizer: env.Authorizer,
		AuditSvc:   env.Audit,
		Listener:   roster,
	})
	svc := New(Params{
		DB:         env.DB,
		Log:        env.Log,
		Repo:       repository.Provide(),
		Directory:  env.Directory,
		Authorizer: env.Authorizer,
		Roster:     roster,
	})

	return &harness{env: env, svc: svc, campaigns: campaigns, invitations: invitations, results: results}
}

func (h *harness) campaign(t *testing.T, creator identitydomain.Identity, kind campaigndomain.Kind, name string) campaigndomain.Campaign {
	t.Helper()
	h.env.Clock.Advance(time.Minute)
	start := h.env.Clock.Now()
	campaign, err := h.campaigns.Create(context.Background(), campaigndomain.CreateCampaignRequest{
		CompanyID: h.env.Company.ID,
		Creator:   creator,
		Kind:      kind,
		ToolID:    "leadership-style",
		Name:      name,
		StartDate: start,
		EndDate:   start.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return campaign
}

func (h *harness) completeIndividual(t *testing.T, code, email string) assessmentdomain.Result {
	t.Helper()
	invitation, _, err := h.invitations.Create(context.Background(), invitationdomain.CreateInvitationRequest{
		Email:      email,
		CompanyID:  h.env.Company.ID,
		InviteCode: code,
	})
	require.NoError(t, err)
	result, err := h.invitations.RecordCompletion(context.Background(), invitationdomain.CompletionEvent{InvitationID: invitation.ID})
	require.NoError(t, err)
	return result
}

func (h *harness) completeShared(t *testing.T, code, email string) assessmentdomain.Result {
	t.Helper()
	invitation, _, err := h.invitations.Create(context.Background(), invitationdomain.CreateInvitationRequest{
		CompanyID:  h.env.Company.ID,
		InviteCode: code,
		Metadata:   &invitationdomain.MetadataInput{GenericLink: true},
	})
	require.NoError(t, err)
	result, err := h.invitations.RecordCompletion(context.Background(), invitationdomain.CompletionEvent{
		InvitationID:   invitation.ID,
		SubmitterName:  "Peer",
		SubmitterEmail: email,
	})
	require.NoError(t, err)
	return result
}

func campaignIDs(campaigns []campaigndomain.Campaign) []string {
	out := make([]string, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, c.ID.String())
	}
	return out
}

func resultIDs(results []assessmentdomain.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID.String())
	}
	return out
}

func TestPartitionSeparatesPeerSharedData(t *testing.T) {
	h := newHarness(t)
	orgWide := h.campaign(t, h.env.AdminIdentity(), campaigndomain.KindOrgWide, "Company survey")
	peer := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared, "My team")

	orgResult := h.completeIndividual(t, orgWide.Code, "a@acme.com")
	peerResult := h.completeShared(t, peer.Code, "p1@x.com")

	secondAdmin, err := h.env.Directory.CreateAdmin(context.Background(), identitydomain.CreateAdminRequest{
		CompanyID: h.env.Company.ID,
		Email:     "cfo@acme.com",
	})
	require.NoError(t, err)

	for _, viewer := range []identitydomain.Identity{
		h.env.AdminIdentity(),
		{Kind: identitydomain.KindAdmin, Ref: secondAdmin.Email},
	} {
		view, err := h.svc.AdminView(context.Background(), domain.AdminViewRequest{CompanyID: h.env.Company.ID, Viewer: viewer})
		require.NoError(t, err)
		assert.Equal(t, []string{orgWide.ID.String()}, campaignIDs(view.Campaigns))
		assert.Equal(t, []string{orgResult.ID.String()}, resultIDs(view.Results))
		assert.NotContains(t, resultIDs(view.Results), peerResult.ID.String())
	}

	managerView, err := h.svc.ManagerView(context.Background(), domain.ManagerViewRequest{Viewer: h.env.ManagerIdentity()})
	require.NoError(t, err)
	assert.Equal(t, []string{peer.ID.String()}, campaignIDs(managerView.Campaigns))
	assert.Equal(t, []string{peerResult.ID.String()}, resultIDs(managerView.Results))
	require.Len(t, managerView.Roster, 1)
	assert.Equal(t, "p1@x.com", managerView.Roster[0].Email)
}

func TestBasicPeerShareInvisibleToAdmins(t *testing.T) {
	h := newHarness(t)
	peer := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared, "My team")
	h.completeShared(t, peer.Code, "p1@x.com")

	view, err := h.svc.AdminView(context.Background(), domain.AdminViewRequest{CompanyID: h.env.Company.ID, Viewer: h.env.AdminIdentity()})
	require.NoError(t, err)
	assert.Empty(t, view.Campaigns)
	assert.Empty(t, view.Results)
}

func TestAdminViewOrdersCampaignsByCreation(t *testing.T) {
	h := newHarness(t)
	first := h.campaign(t, h.env.AdminIdentity(), campaigndomain.KindOrgWide, "First")
	second := h.campaign(t, h.env.AdminIdentity(), campaigndomain.KindOrgWide, "Second")

	view, err := h.svc.AdminView(context.Background(), domain.AdminViewRequest{CompanyID: h.env.Company.ID, Viewer: h.env.AdminIdentity()})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID.String(), second.ID.String()}, campaignIDs(view.Campaigns))
}

func TestUnresolvableCodeCountsAsOrgWide(t *testing.T) {
	h := newHarness(t)
	now := h.env.Clock.Now()
	invitationID := h.env.Node.Generate()
	require.NoError(t, h.env.DB.Exec(
		`INSERT INTO invitations (id, company_id, email, name, invite_code, status, is_generic, reset_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invitationID, h.env.Company.ID, "legacy@acme.com", "", "LEGACY22", "COMPLETED", false, 0, now, now,
	).Error)
	result, err := h.results.Record(context.Background(), assessmentdomain.RecordRequest{
		InvitationID:   invitationID,
		ToolID:         "team-health",
		SubmitterEmail: "legacy@acme.com",
	})
	require.NoError(t, err)

	view, err := h.svc.AdminView(context.Background(), domain.AdminViewRequest{CompanyID: h.env.Company.ID, Viewer: h.env.AdminIdentity()})
	require.NoError(t, err)
	assert.Equal(t, []string{result.ID.String()}, resultIDs(view.Results))

	managerView, err := h.svc.ManagerView(context.Background(), domain.ManagerViewRequest{Viewer: h.env.ManagerIdentity()})
	require.NoError(t, err)
	assert.Empty(t, managerView.Results)
}

func TestAdminViewRejectsOutsiders(t *testing.T) {
	h := newHarness(t)
	h.env.SeedCompany(t, "Globex", "globex.com", "ops@globex.com", "idp|globex")

	_, err := h.svc.AdminView(context.Background(), domain.AdminViewRequest{
		CompanyID: h.env.Company.ID,
		Viewer:    identitydomain.Identity{Kind: identitydomain.KindAdmin, Ref: "ops@globex.com"},
	})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = h.svc.AdminView(context.Background(), domain.AdminViewRequest{CompanyID: h.env.Company.ID, Viewer: h.env.ManagerIdentity()})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = h.svc.AdminView(context.Background(), domain.AdminViewRequest{Viewer: h.env.AdminIdentity()})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}

func TestManagerViewIsScopedToOwnCampaigns(t *testing.T) {
	h := newHarness(t)
	_, _, other := h.env.SeedCompany(t, "Initech", "initech.com", "ops@initech.com", "idp|other")
	mine := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared, "Mine")
	h.completeShared(t, mine.Code, "p1@x.com")

	view, err := h.svc.ManagerView(context.Background(), domain.ManagerViewRequest{
		Viewer: identitydomain.Identity{Kind: identitydomain.KindManager, Ref: other.ExternalIdentityRef},
	})
	require.NoError(t, err)
	assert.Empty(t, view.Campaigns)
	assert.Empty(t, view.Results)
	assert.Empty(t, view.Roster)

	_, err = h.svc.ManagerView(context.Background(), domain.ManagerViewRequest{Viewer: h.env.AdminIdentity()})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}
