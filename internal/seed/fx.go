package seed

import (
	"context"

	"github.com/smallbiznis/pulse/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("seed",
	fx.Provide(NewSeeder),
	fx.Invoke(registerBootstrap),
)

func registerBootstrap(lc fx.Lifecycle, seeder *Seeder, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return seeder.EnsureBootstrap(ctx, cfg.Bootstrap)
		},
	})
}
