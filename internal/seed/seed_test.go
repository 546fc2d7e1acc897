package seed

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/pulse/internal/clock"
	"github.com/smallbiznis/pulse/internal/config"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	identitymock "github.com/smallbiznis/pulse/internal/identity/domain/mock"
	identityrepository "github.com/smallbiznis/pulse/internal/identity/repository"
	identityservice "github.com/smallbiznis/pulse/internal/identity/service"
	"github.com/smallbiznis/pulse/internal/migration"
	"github.com/smallbiznis/pulse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var bootstrap = config.BootstrapConfig{
	CompanyName:   "Acme",
	CompanyDomain: "acme.com",
	AdminEmail:    "Ops@Acme.com",
}

func newDirectory(t *testing.T) identitydomain.Directory {
	t.Helper()
	return identityservice.New(identityservice.Params{
		DB:    testutil.OpenDB(t),
		Log:   zaptest.NewLogger(t),
		GenID: testutil.MustNode(t),
		Clock: clock.SystemClock{},
		Repo:  identityrepository.Provide(),
	})
}

func TestEnsureBootstrapIsIdempotent(t *testing.T) {
	directory := newDirectory(t)
	seeder := NewSeeder(Params{Schema: &migration.Schema{}, Log: zaptest.NewLogger(t), Directory: directory})

	require.NoError(t, seeder.EnsureBootstrap(context.Background(), bootstrap))
	require.NoError(t, seeder.EnsureBootstrap(context.Background(), bootstrap))

	admin, err := directory.ResolveAdmin(context.Background(), "ops@acme.com")
	require.NoError(t, err)
	company, err := directory.GetCompany(context.Background(), admin.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)
	assert.Equal(t, []string{"acme.com"}, company.Domains)
}

func TestEnsureBootstrapSkipsWhenUnset(t *testing.T) {
	ctrl := gomock.NewController(t)
	directory := identitymock.NewMockDirectory(ctrl)
	seeder := NewSeeder(Params{Log: zaptest.NewLogger(t), Directory: directory})

	assert.NoError(t, seeder.EnsureBootstrap(context.Background(), config.BootstrapConfig{}))
}

func TestEnsureBootstrapRejectsPartialConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	directory := identitymock.NewMockDirectory(ctrl)
	seeder := NewSeeder(Params{Log: zaptest.NewLogger(t), Directory: directory})

	err := seeder.EnsureBootstrap(context.Background(), config.BootstrapConfig{CompanyName: "Acme"})
	assert.ErrorIs(t, err, ErrIncompleteBootstrap)
}
