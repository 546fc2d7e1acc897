package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/pulse/internal/config"
	identitydomain "github.com/smallbiznis/pulse/internal/identity/domain"
	"github.com/smallbiznis/pulse/internal/migration"
	"github.com/smallbiznis/pulse/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// bootstrapOrgRef marks the company created from BOOTSTRAP_* settings.
const bootstrapOrgRef = "bootstrap"

var ErrIncompleteBootstrap = errors.New("bootstrap requires company name, domain and admin email")

type Params struct {
	fx.In

	Schema    *migration.Schema
	Log       *zap.Logger
	Directory identitydomain.Directory
	Limiter   *ratelimit.CompletionLimiter `optional:"true"`
}

type Seeder struct {
	log       *zap.Logger
	directory identitydomain.Directory
	limiter   *ratelimit.CompletionLimiter
}

func NewSeeder(p Params) *Seeder {
	return &Seeder{
		log:       p.Log.Named("seed"),
		directory: p.Directory,
		limiter:   p.Limiter,
	}
}

// EnsureBootstrap creates the first company and its admin when cfg names
// them. It is a no-op once the admin exists.
func (s *Seeder) EnsureBootstrap(ctx context.Context, cfg config.BootstrapConfig) error {
	name := strings.TrimSpace(cfg.CompanyName)
	domainName := strings.TrimSpace(cfg.CompanyDomain)
	email := identitydomain.NormalizeEmail(cfg.AdminEmail)
	if name == "" && domainName == "" && email == "" {
		return nil
	}
	if name == "" || domainName == "" || email == "" {
		return ErrIncompleteBootstrap
	}

	token, ok, err := s.limiter.TryLockBootstrap(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Info("bootstrap running on another instance, skipping")
		return nil
	}
	defer func() {
		if err := s.limiter.ReleaseBootstrap(context.Background(), token); err != nil {
			s.log.Warn("release bootstrap lock", zap.Error(err))
		}
	}()

	if _, err := s.directory.ResolveAdmin(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, identitydomain.ErrIdentityNotFound) {
		return err
	}

	company, err := s.directory.CreateCompany(ctx, identitydomain.CreateCompanyRequest{
		Name:           name,
		Domains:        []string{domainName},
		ExternalOrgRef: bootstrapOrgRef,
	})
	if err != nil {
		if errors.Is(err, identitydomain.ErrAlreadyExists) {
			s.log.Warn("bootstrap company exists without an active admin", zap.String("admin_email", email))
			return nil
		}
		return err
	}

	if _, err := s.directory.CreateAdmin(ctx, identitydomain.CreateAdminRequest{
		CompanyID: company.ID,
		Email:     email,
	}); err != nil {
		return err
	}

	s.log.Info("bootstrap company created",
		zap.String("company_id", company.ID.String()),
		zap.String("company", name),
	)
	return nil
}
