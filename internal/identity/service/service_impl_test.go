package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/pulse/internal/clock"
	"github.com/smallbiznis/pulse/internal/errs"
	"github.com/smallbiznis/pulse/internal/identity/domain"
	"github.com/smallbiznis/pulse/internal/identity/repository"
	"github.com/smallbiznis/pulse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestDirectory(t *testing.T) domain.Directory {
	t.Helper()

	return New(Params{
		DB:    testutil.OpenDB(t),
		Log:   zaptest.NewLogger(t),
		GenID: testutil.MustNode(t),
		Clock: clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestCreateCompanyNormalizesDomains(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	company, err := dir.CreateCompany(ctx, domain.CreateCompanyRequest{
		Name:    "Acme",
		Domains: []string{" Acme.com ", "acme.com", "", "acme.io"},
	})
	require.NoError(t, err)

	got, err := dir.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, []string{"acme.com", "acme.io"}, got.Domains)
}

func TestCreateCompanyRequiresDomain(t *testing.T) {
	dir := newTestDirectory(t)

	_, err := dir.CreateCompany(context.Background(), domain.CreateCompanyRequest{Name: "Acme"})
	require.ErrorIs(t, err, domain.ErrInvalidCompany)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestResolveAdmin(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	company, err := dir.CreateCompany(ctx, domain.CreateCompanyRequest{Name: "Acme", Domains: []string{"acme.com"}})
	require.NoError(t, err)
	_, err = dir.CreateAdmin(ctx, domain.CreateAdminRequest{CompanyID: company.ID, Email: "Ops@Acme.com"})
	require.NoError(t, err)

	admin, err := dir.ResolveAdmin(ctx, "  ops@acme.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.com", admin.Email)
	assert.Equal(t, company.ID, admin.CompanyID)

	ok, err := dir.IsCompanyAdmin(ctx, "ops@acme.com", company.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.IsCompanyAdmin(ctx, "ops@acme.com", company.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, dir.SetAdminActive(ctx, "ops@acme.com", false))
	_, err = dir.ResolveAdmin(ctx, "ops@acme.com")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)

	ok, err = dir.IsCompanyAdmin(ctx, "ops@acme.com", company.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateAdminDuplicateEmail(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	company, err := dir.CreateCompany(ctx, domain.CreateCompanyRequest{Name: "Acme", Domains: []string{"acme.com"}})
	require.NoError(t, err)
	_, err = dir.CreateAdmin(ctx, domain.CreateAdminRequest{CompanyID: company.ID, Email: "ops@acme.com"})
	require.NoError(t, err)

	_, err = dir.CreateAdmin(ctx, domain.CreateAdminRequest{CompanyID: company.ID, Email: "OPS@acme.com"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestResolveManagerAndSoftDelete(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	company, err := dir.CreateCompany(ctx, domain.CreateCompanyRequest{Name: "Acme", Domains: []string{"acme.com"}})
	require.NoError(t, err)
	created, err := dir.CreateManager(ctx, domain.CreateManagerRequest{
		CompanyID:           company.ID,
		Email:               "lead@acme.com",
		ExternalIdentityRef: "idp|lead",
	})
	require.NoError(t, err)

	principal, err := dir.Resolve(ctx, domain.Identity{Kind: domain.KindManager, Ref: "idp|lead"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, principal.ID)
	assert.Equal(t, company.ID, principal.CompanyID)
	assert.Equal(t, domain.KindManager, principal.Kind)

	require.NoError(t, dir.DeleteManager(ctx, "idp|lead"))

	_, err = dir.ResolveManager(ctx, "idp|lead")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
	assert.ErrorIs(t, dir.DeleteManager(ctx, "idp|lead"), domain.ErrIdentityNotFound)
}

func TestCreateManagerUnknownCompany(t *testing.T) {
	dir := newTestDirectory(t)

	_, err := dir.CreateManager(context.Background(), domain.CreateManagerRequest{
		CompanyID:           42,
		Email:               "lead@acme.com",
		ExternalIdentityRef: "idp|lead",
	})
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
}

func TestResolveUnknownKind(t *testing.T) {
	dir := newTestDirectory(t)

	_, err := dir.Resolve(context.Background(), domain.Identity{Kind: "guest", Ref: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)
}

func TestParseKind(t *testing.T) {
	kind, err := domain.ParseKind(" Manager ")
	require.NoError(t, err)
	assert.Equal(t, domain.KindManager, kind)

	_, err = domain.ParseKind("owner")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)
}
