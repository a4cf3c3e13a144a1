// Package testutil opens isolated in-memory SQLite databases for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kbukum/backend-template/database"
	"github.com/kbukum/backend-template/logger"
)

var seq atomic.Int64

// Config returns a sqlite config pointing at a fresh named in-memory
// database shared by all connections of one pool.
func Config(name string) database.Config {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	cfg := database.Config{
		Enabled:      true,
		Driver:       database.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1)),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxRetries:   1,
		LogLevel:     "silent",
	}
	cfg.ApplyDefaults()
	return cfg
}

// Open returns a migrated database that is closed when the test ends.
func Open(t testing.TB, models ...interface{}) *database.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.New(ctx, Config(t.Name()), logger.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(ctx, models...); err != nil {
			t.Fatalf("migrate test database: %v", err)
		}
	}
	return db
}
