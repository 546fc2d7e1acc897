package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pulse/internal/clock"
	"github.com/smallbiznis/pulse/internal/config"
	"github.com/smallbiznis/pulse/internal/migration"
	"github.com/smallbiznis/pulse/internal/observability"
	"github.com/smallbiznis/pulse/internal/server"
	"github.com/smallbiznis/pulse/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		// HTTP surface and every domain module it serves
		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
