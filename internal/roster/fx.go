package roster

import (
	invitationdomain "github.com/smallbiznis/pulse/internal/invitation/domain"
	"github.com/smallbiznis/pulse/internal/roster/domain"
	"github.com/smallbiznis/pulse/internal/roster/repository"
	"github.com/smallbiznis/pulse/internal/roster/service"
	"go.uber.org/fx"
)

var Module = fx.Module("roster.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s *service.Service) domain.Service { return s }),
	fx.Provide(func(s *service.Service) invitationdomain.CompletionListener { return s }),
	fx.Invoke(func(lc fx.Lifecycle, s *service.Service) {
		lc.Append(fx.Hook{OnStop: s.Stop})
	}),
)
