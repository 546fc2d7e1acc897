package tool

import "go.uber.org/fx"

var Module = fx.Module("tool.catalog",
	fx.Provide(NewCatalog),
)
