// Package integration exercises the assembled storefront stack: sqlite
// storage behind the gorm repositories, the application services on top, and
// the Telegram update router in front.
package integration

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/migration"
)

// newTestDB opens an in-memory sqlite database and applies the shipped sqlite
// migrations to it. The pool is pinned to a single connection; sqlite gives
// every connection its own in-memory database, so one shared connection is
// what keeps the schema visible to everything using the pool.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	runMigrations(t, db)

	return db
}

// runMigrations applies the sqlite migration files through the same migrator
// the CLI uses, so tests run against the shipped schema rather than a gorm
// auto-migration of the models.
func runMigrations(t *testing.T, db *gorm.DB) {
	t.Helper()

	migrationsPath := findMigrationsPath()
	require.NotEmpty(t, migrationsPath, "could not find migrations directory")

	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, config.DriverSQLite, filepath.Join(migrationsPath, config.DriverSQLite), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	// The migrator is not closed here: its Close also closes the shared
	// connection and with it the in-memory database.
}

// findMigrationsPath locates the migrations directory relative to this file.
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		migrationsPath := filepath.Join(dir, "migrations")
		if _, err := os.Stat(migrationsPath); err == nil {
			return migrationsPath
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
