// Package dbtest opens throwaway in-memory databases for tests
package dbtest

import (
	"bitwise74/roleplay-api/db"
	"fmt"
	"strings"
	"testing"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a migrated shared-cache in-memory SQLite database that lives
// until the test ends
func New(t testing.TB) *gorm.DB {
	t.Helper()

	id, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz", 10)
	require.NoError(t, err)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=1", name, id)

	conn, err := db.Open("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)

	// the database is dropped once the last connection closes. A single
	// connection also keeps shared-cache table locks out of the way.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(conn))
	return conn
}
