// Package testutil provides builders for registries, tag sets and seeded
// SQLite databases used across package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brezhnevtusks/Unidork-sub000/internal/infrastructure/sqlite"
)

// NewTestDB opens a migrated database in a per-test temp directory and
// closes it when the test ends.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "undertags.db"))
	require.NoError(t, err, "failed to open test database")

	t.Cleanup(func() { _ = db.Close() })
	return db
}
