package codegen

import (
	"github.com/smallbiznis/pulse/internal/config"
	"github.com/smallbiznis/pulse/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("codegen",
	fx.Provide(NewDBChecker),
	fx.Provide(func(cfg config.Config, checker Checker, log *zap.Logger, m *metrics.Metrics) *Generator {
		return NewGenerator(checker, Options{
			Length:      cfg.Codes.Length,
			MaxAttempts: cfg.Codes.MaxAttempts,
		}, log, m)
	}),
)
