package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a fully configured in-memory SQLite catalog for testing.
//
// The pool is limited to one connection so every query sees the same
// in-memory database. Cleanup is registered with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    db := storage.NewTestDB(t)
//	    // ... test code ...
//	}
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, CreateSchema(db))

	return db
}

// NewTestDBFile creates a file-based catalog in t.TempDir() via Open.
// Use this when a test needs persistence across connections.
func NewTestDBFile(t testing.TB) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, dbPath
}
