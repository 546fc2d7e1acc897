package visibility

import (
	"github.com/smallbiznis/pulse/internal/visibility/repository"
	"github.com/smallbiznis/pulse/internal/visibility/service"
	"go.uber.org/fx"
)

var Module = fx.Module("visibility.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
