// Package fixture wires leaf services over a migrated test database and seeds
// one company with an admin and a manager.
package fixture

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	auditdomain "github.com/smallbiznis/pulse/internal/audit/domain"
	auditrepository "github.com/smallbiznis/pulse/internal/audit/repository"
	auditservice "github.com/smallbiznis/pulse/internal/audit/service"
	"github.com/smallbiznis/pulse/internal/authorization"
	"github.com/smallbiznis/pulse/internal/clock"
	"github.com/smallbiznis/pulse/internal/codegen"
	"github.com/smallbiznis/pulse/internal/config"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	identityrepository "github.com/smallbiznis/pulse/internal/identity/repository"
	identityservice "github.com/smallbiznis/pulse/internal/identity/service"
	"github.com/smallbiznis/pulse/internal/observability/metrics"
	"github.com/smallbiznis/pulse/internal/testutil"
	"github.com/smallbiznis/pulse/internal/tool"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const (
	AdminEmail = "ops@acme.com"
	ManagerRef = "idp|lead"
	BaseURL    = "https://pulse.test"
)

type Env struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Node     *snowflake.Node
	Clock    *clock.FakeClock
	Config   config.Config
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Directory  identitydomain.Directory
	Audit      auditdomain.Service
	Authorizer authorization.Service
	Tools      *tool.Catalog
	Codes      *codegen.Generator

	Company identitydomain.Company
	Admin   identitydomain.Admin
	Manager identitydomain.ManagerProfile
}

func New(t *testing.T) *Env {
	t.Helper()

	env := &Env{
		DB:       testutil.OpenDB(t),
		Log:      zaptest.NewLogger(t),
		Node:     testutil.MustNode(t),
		Clock:    clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		Registry: prometheus.NewRegistry(),
		Config: config.Config{
			PublicBaseURL: BaseURL,
			Codes:         config.CodeConfig{Length: 8, MaxAttempts: 10},
			Linking:       config.LinkingConfig{MaxTries: 3},
		},
	}
	env.Metrics = metrics.New(env.Registry)

	env.Directory = identityservice.New(identityservice.Params{
		DB:    env.DB,
		Log:   env.Log,
		GenID: env.Node,
		Clock: env.Clock,
		Repo:  identityrepository.Provide(),
	})
	env.Audit = auditservice.NewService(auditservice.Params{
		DB:    env.DB,
		Log:   env.Log,
		GenID: env.Node,
		Clock: env.Clock,
		Repo:  auditrepository.Provide(),
	})

	enforcer, err := authorization.NewEnforcer()
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}
	env.Authorizer = authorization.NewService(authorization.Params{
		Log:      env.Log,
		Enforcer: enforcer,
		AuditSvc: env.Audit,
	})

	env.Tools, err = tool.NewStaticCatalog(tool.DefaultTools())
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	env.Codes = codegen.NewGenerator(codegen.NewDBChecker(env.DB), codegen.Options{
		Length:      env.Config.Codes.Length,
		MaxAttempts: env.Config.Codes.MaxAttempts,
	}, env.Log, env.Metrics)

	env.Company, env.Admin, env.Manager = env.SeedCompany(t, "Acme", "acme.com", AdminEmail, ManagerRef)
	return env
}

// SeedCompany creates a company with one admin and one manager.
func (e *Env) SeedCompany(t *testing.T, name, domainName, adminEmail, managerRef string) (identitydomain.Company, identitydomain.Admin, identitydomain.ManagerProfile) {
	t.Helper()
	ctx := context.Background()

	company, err := e.Directory.CreateCompany(ctx, identitydomain.CreateCompanyRequest{
		Name:    name,
		Domains: []string{domainName},
	})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	admin, err := e.Directory.CreateAdmin(ctx, identitydomain.CreateAdminRequest{
		CompanyID: company.ID,
		Email:     adminEmail,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	manager, err := e.Directory.CreateManager(ctx, identitydomain.CreateManagerRequest{
		CompanyID:           company.ID,
		Email:               "lead." + name + "@" + domainName,
		ExternalIdentityRef: managerRef,
	})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	return company, admin, manager
}

func (e *Env) AdminIdentity() identitydomain.Identity {
	return identitydomain.Identity{Kind: identitydomain.KindAdmin, Ref: e.Admin.Email}
}

func (e *Env) ManagerIdentity() identitydomain.Identity {
	return identitydomain.Identity{Kind: identitydomain.KindManager, Ref: e.Manager.ExternalIdentityRef}
}

// CounterValue reads a counter or the sum of a counter vector from the registry.
func (e *Env) CounterValue(t *testing.T, name string) float64 {
	t.Helper()

	families, err := e.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}
