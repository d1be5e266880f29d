// Package dbtest provides a migrated in-memory database for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/manjeshpatagar/mytradingview/internal/database"
	"github.com/manjeshpatagar/mytradingview/internal/util"
)

// Open returns a fresh sqlite database private to t.
func Open(t *testing.T, clock util.Clock) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(database.Options{
		Driver: database.DriverSQLite,
		DSN:    dsn,
		Clock:  clock,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the memory db alive and avoids sqlite table locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
