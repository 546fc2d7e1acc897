package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cenkalti/backoff/v5"
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
	"github.com/smallbiznis/pulse/internal/observability/metrics"
	"github.com/smallbiznis/pulse/internal/roster/domain"
	"github.com/smallbiznis/pulse/internal/roster/repository"
	"github.com/smallbiznis/pulse/internal/testutil/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedCodes struct {
	mu    sync.Mutex
	codes []string
}

func (g *fixedCodes) Generate(_ context.Context, _ int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}

// flakyRepo fails member inserts until failures calls have been made.
type flakyRepo struct {
	domain.Repository
	failures int32
	calls    atomic.Int32
}

func (r *flakyRepo) InsertMemberIfAbsent(ctx context.Context, db *gorm.DB, member *domain.TeamMember) (*domain.TeamMember, bool, error) {
	if r.calls.Add(1) <= r.failures {
		return nil, false, errors.New("connection reset by peer")
	}
	return r.Repository.InsertMemberIfAbsent(ctx, db, member)
}

type harness struct {
	env         *fixture.Env
	linker      *Service
	campaigns   *campaignservice.Service
	invitations invitationdomain.Service
	results     assessmentdomain.Service
	codes       *fixedCodes
}

func newHarness(t *testing.T, repo domain.Repository) *harness {
	t.Helper()
	env := fixture.New(t)
	codes := &fixedCodes{codes: []string{"ABC12345", "ORG23456", "PEER3456", "PEER4567"}}

	campaigns := campaignservice.NewWith(campaignservice.Params{
		DB:         env.DB,
		Log:        env.Log,
		GenID:      env.Node,
		Clock:      env.Clock,
		Config:     env.Config,
		Repo:       campaignrepository.Provide(),
		Directory:  env.Directory,
		Authorizer: env.Authorizer,
		Metrics:    env.Metrics,
	}, codes, env.Tools)
	results := assessmentservice.New(assessmentservice.Params{
		DB:    env.DB,
		Log:   env.Log,
		GenID: env.Node,
		Clock: env.Clock,
		Repo:  assessmentrepository.Provide(),
	})

	if repo == nil {
		repo = repository.Provide()
	}
	linker := New(Params{
		DB:        env.DB,
		Log:       env.Log,
		GenID:     env.Node,
		Clock:     env.Clock,
		Config:    env.Config,
		Repo:      repo,
		Campaigns: campaigns,
		Directory: env.Directory,
		Metrics:   env.Metrics,
	})
	linker.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	t.Cleanup(func() { _ = linker.Stop(context.Background()) })

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
		Listener:   linker,
		Metrics:    env.Metrics,
	})

	return &harness{env: env, linker: linker, campaigns: campaigns, invitations: invitations, results: results, codes: codes}
}

func (h *harness) campaign(t *testing.T, creator identitydomain.Identity, kind campaigndomain.Kind) campaigndomain.Campaign {
	t.Helper()
	start := h.env.Clock.Now()
	campaign, err := h.campaigns.Create(context.Background(), campaigndomain.CreateCampaignRequest{
		CompanyID: h.env.Company.ID,
		Creator:   creator,
		Kind:      kind,
		ToolID:    "team-health",
		Name:      "Team pulse",
		StartDate: start,
		EndDate:   start.Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return campaign
}

func (h *harness) sharedInvitation(t *testing.T, code string) invitationdomain.Invitation {
	t.Helper()
	invitation, _, err := h.invitations.Create(context.Background(), invitationdomain.CreateInvitationRequest{
		CompanyID:  h.env.Company.ID,
		InviteCode: code,
		Metadata:   &invitationdomain.MetadataInput{GenericLink: true},
	})
	require.NoError(t, err)
	return invitation
}

func (h *harness) complete(t *testing.T, invitationID snowflake.ID, name, email string) {
	t.Helper()
	_, err := h.invitations.RecordCompletion(context.Background(), invitationdomain.CompletionEvent{
		InvitationID:   invitationID,
		SubmitterName:  name,
		SubmitterEmail: email,
	})
	require.NoError(t, err)
}

func (h *harness) count(t *testing.T, table string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.env.DB.Raw(fmt.Sprintf("SELECT COUNT(1) FROM %s", table)).Scan(&count).Error)
	return count
}

func TestBasicPeerShare(t *testing.T) {
	h := newHarness(t, nil)
	campaign := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared)
	require.Equal(t, "ABC12345", campaign.Code)
	shared := h.sharedInvitation(t, campaign.Code)

	h.complete(t, shared.ID, "Pat", "p1@x.com")

	roster, err := h.linker.ListRoster(context.Background(), h.env.Manager.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, h.env.Manager.ID, roster[0].ManagerID)
	assert.Equal(t, "p1@x.com", roster[0].Email)
	assert.Equal(t, "Pat", roster[0].Name)
	assert.Equal(t, domain.MemberActive, roster[0].Status)
	assert.EqualValues(t, 1, h.count(t, "team_memberships"))
}

func TestDuplicateSubmissionKeepsSingleMember(t *testing.T) {
	h := newHarness(t, nil)
	campaign := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared)
	shared := h.sharedInvitation(t, campaign.Code)

	h.complete(t, shared.ID, "Pat", "p1@x.com")
	h.complete(t, shared.ID, "Patricia", " P1@X.com ")

	results, err := h.results.ListByInvitation(context.Background(), shared.ID)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.EqualValues(t, 1, h.count(t, "team_members"))
	assert.EqualValues(t, 1, h.count(t, "team_memberships"))

	roster, err := h.linker.ListRoster(context.Background(), h.env.Manager.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Pat", roster[0].Name)
	assert.EqualValues(t, 2, h.env.CounterValue(t, "pulse_roster_link_outcomes_total"))
}

func TestOrgWideCampaignNeverLinks(t *testing.T) {
	h := newHarness(t, nil)
	campaign := h.campaign(t, h.env.AdminIdentity(), campaigndomain.KindOrgWide)

	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		invitation, created, err := h.invitations.Create(context.Background(), invitationdomain.CreateInvitationRequest{
			Email:      email,
			Name:       fmt.Sprintf("Participant %d", i),
			CompanyID:  h.env.Company.ID,
			InviteCode: campaign.Code,
		})
		require.NoError(t, err)
		require.True(t, created)
		h.complete(t, invitation.ID, "", "")
	}

	assert.Zero(t, h.count(t, "team_members"))
	assert.Zero(t, h.count(t, "team_memberships"))
}

func TestConcurrentLinkingIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	campaign := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared)
	shared := h.sharedInvitation(t, campaign.Code)

	result := assessmentdomain.Result{ID: 1, InvitationID: shared.ID, SubmitterName: "Pat", SubmitterEmail: "p1@x.com"}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		failures []error
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := h.linker.Link(context.Background(), result, shared)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			if outcome.MemberCreated {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, failures)
	assert.Equal(t, 1, created)
	assert.EqualValues(t, 1, h.count(t, "team_members"))
	assert.EqualValues(t, 1, h.count(t, "team_memberships"))
}

func TestLinkSkipsUnresolvableCreator(t *testing.T) {
	h := newHarness(t, nil)
	campaign := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared)
	shared := h.sharedInvitation(t, campaign.Code)
	require.NoError(t, h.env.Directory.DeleteManager(context.Background(), h.env.Manager.ExternalIdentityRef))

	outcome, err := h.linker.Link(context.Background(), assessmentdomain.Result{SubmitterEmail: "p1@x.com"}, shared)
	require.NoError(t, err)
	assert.Equal(t, metrics.LinkSkipped, outcome.Result)
	assert.Equal(t, ReasonCreatorUnresolved, outcome.Reason)

	h.complete(t, shared.ID, "Pat", "p1@x.com")
	assert.Zero(t, h.count(t, "team_members"))
}

func TestLinkWithoutEmailIsDeferred(t *testing.T) {
	h := newHarness(t, nil)
	campaign := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared)
	shared := h.sharedInvitation(t, campaign.Code)

	_, err := h.linker.Link(context.Background(), assessmentdomain.Result{SubmitterName: "Anon"}, shared)
	require.ErrorIs(t, err, domain.ErrMissingEmail)

	h.complete(t, shared.ID, "Anon", "")
	assert.EqualValues(t, 1, h.env.CounterValue(t, "pulse_roster_link_outcomes_total"))
	assert.Zero(t, h.count(t, "team_members"))
}

func TestOnCompletionRetriesTransientFailures(t *testing.T) {
	repo := &flakyRepo{Repository: repository.Provide(), failures: 2}
	h := newHarness(t, repo)
	campaign := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared)
	shared := h.sharedInvitation(t, campaign.Code)

	h.complete(t, shared.ID, "Pat", "p1@x.com")
	h.linker.Wait()

	assert.EqualValues(t, 3, repo.calls.Load())
	assert.EqualValues(t, 1, h.count(t, "team_members"))
}

func TestOnCompletionDefersAfterRetries(t *testing.T) {
	repo := &flakyRepo{Repository: repository.Provide(), failures: 100}
	h := newHarness(t, repo)
	campaign := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared)
	shared := h.sharedInvitation(t, campaign.Code)

	h.complete(t, shared.ID, "Pat", "p1@x.com")
	h.linker.Wait()

	assert.EqualValues(t, h.env.Config.Linking.MaxTries, repo.calls.Load())
	assert.Zero(t, h.count(t, "team_members"))
	assert.EqualValues(t, 1, h.env.CounterValue(t, "pulse_roster_link_outcomes_total"))

	results, err := h.results.ListByInvitation(context.Background(), shared.ID)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestOnCompletionDoesNotBlockSubmission(t *testing.T) {
	repo := &flakyRepo{Repository: repository.Provide(), failures: 100}
	h := newHarness(t, repo)
	h.linker.newBackOff = newRetryBackOff
	h.linker.maxTries = 10
	campaign := h.campaign(t, h.env.ManagerIdentity(), campaigndomain.KindPeerShared)
	shared := h.sharedInvitation(t, campaign.Code)

	started := time.Now()
	h.complete(t, shared.ID, "Pat", "p1@x.com")
	assert.Less(t, time.Since(started), 500*time.Millisecond)

	results, err := h.results.ListByInvitation(context.Background(), shared.ID)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.linker.Stop(ctx))

	assert.Less(t, repo.calls.Load(), int32(10))
	assert.Zero(t, h.count(t, "team_members"))
	assert.EqualValues(t, 1, h.env.CounterValue(t, "pulse_roster_link_outcomes_total"))
}

func TestListRosterRequiresManager(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.linker.ListRoster(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidManager)
}
