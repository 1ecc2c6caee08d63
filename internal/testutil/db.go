// Package testutil provides test utilities for font catalog database setup.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/fontpick/internal/catalog"
)

// NewFontDB creates a SQLite font database file under t.TempDir() with the
// catalog schema and returns its path and a writable handle. The handle is
// closed on test cleanup.
func NewFontDB(t *testing.T) (string, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fonts.db")
	db, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(catalog.SQLiteSchema)
	require.NoError(t, err)
	return path, db
}
