package migration

import (
	"context"

	"github.com/smallbiznis/pulse/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Schema is provided once the database schema is up to date. Components that
// write at startup depend on it to run after migrations.
type Schema struct {
	DBType string
}

var Module = fx.Module("migrations",
	fx.Provide(Migrate),
)

func Migrate(conn *gorm.DB, cfg config.Config, log *zap.Logger) (*Schema, error) {
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}

	switch cfg.DBType {
	case "postgres":
		err = RunMigrations(sqlDB)
	default:
		err = ApplyEmbedded(context.Background(), sqlDB)
	}
	if err != nil {
		return nil, err
	}

	log.Info("database schema up to date", zap.String("db_type", cfg.DBType))
	return &Schema{DBType: cfg.DBType}, nil
}
