// Package testutil opens migrated in-memory databases for package tests.
package testutil

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/pulse/internal/migration"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	dbSeq        atomic.Int64
	unsafeDBName = regexp.MustCompile(`[^A-Za-z0-9_]+`)
)

// OpenDB returns a private shared-cache sqlite database with the full schema applied.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := unsafeDBName.ReplaceAllString(t.Name(), "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if err := migration.ApplyEmbedded(context.Background(), sqlDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return conn
}

func MustNode(t *testing.T) *snowflake.Node {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}
