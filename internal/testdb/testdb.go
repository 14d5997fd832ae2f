// Package testdb opens a migrated in-memory SQLite database for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/juanCamilo2002/gamer-buy-api/internal/db"
)

// New returns a fresh database per test. The pool is pinned to a single
// connection so every query sees the same in-memory database and
// transactions run one at a time.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), db.Config())
	require.NoError(t, err, "failed to connect to in-memory db")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), gdb), "failed to migrate tables")

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}
