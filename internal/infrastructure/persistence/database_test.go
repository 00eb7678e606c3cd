package persistence

import (
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/logger"
)

func sqliteConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()

	return &config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "shop.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30,
		ConnMaxIdleTime: 10,
	}
}

func openSQLite(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(sqliteConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDatabase_OpensSQLite(t *testing.T) {
	db := openSQLite(t)

	require.NoError(t, db.Ping())

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 5, stats.MaxOpenConnections)
	assert.GreaterOrEqual(t, stats.OpenConnections, 1)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewDatabaseWithCustomLogger(t *testing.T) {
	gl := logger.NewGormLogger(zap.NewNop(), gormlogger.Silent)

	db, err := NewDatabaseWithCustomLogger(sqliteConfig(t), gl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.NoError(t, db.Ping())
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(sqliteConfig(t))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping())
}

func TestDatabase_Transaction(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.DB.Exec(
		"CREATE TABLE probes (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)").Error)

	countProbes := func(t *testing.T) int64 {
		t.Helper()
		var count int64
		require.NoError(t, db.DB.Table("probes").Count(&count).Error)
		return count
	}

	t.Run("commits on success", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Exec("INSERT INTO probes (name) VALUES (?)", "first").Error
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), countProbes(t))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("INSERT INTO probes (name) VALUES (?)", "second").Error; err != nil {
				return err
			}
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, int64(1), countProbes(t))
	})
}

// TestDatabase_PingMonitored drives Ping and Close against a mocked postgres
// connection so the pool calls can be asserted without a server.
func TestDatabase_PingMonitored(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	// gorm.Open pings once itself.
	mock.ExpectPing()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	db := &Database{DB: gormDB}

	mock.ExpectPing()
	require.NoError(t, db.Ping())

	mock.ExpectClose()
	require.NoError(t, db.Close())

	assert.NoError(t, mock.ExpectationsWereMet())
}
