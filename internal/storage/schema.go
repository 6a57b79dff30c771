package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to catalog_metadata on creation.
const SchemaVersion = "1"

// CreateSchema creates all catalog tables and indexes.
// Uses transactions for atomicity - all schema creation succeeds or fails together.
// Safe to call on an existing catalog.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"documents", createDocumentsTable},
		{"symbols", createSymbolsTable},
		{"catalog_metadata", createCatalogMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`
		INSERT INTO catalog_metadata (key, value, updated_at)
		VALUES ('schema_version', ?, ?)
		ON CONFLICT(key) DO NOTHING
	`, SchemaVersion, now); err != nil {
		return fmt.Errorf("failed to bootstrap catalog_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from catalog_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='catalog_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check catalog_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM catalog_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in catalog_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    root_dir TEXT NOT NULL,
    started_at TEXT NOT NULL,                    -- ISO 8601
    finished_at TEXT NOT NULL DEFAULT '',        -- ISO 8601, empty while running
    files_total INTEGER NOT NULL DEFAULT 0,
    files_written INTEGER NOT NULL DEFAULT 0,
    files_cached INTEGER NOT NULL DEFAULT 0,
    files_failed INTEGER NOT NULL DEFAULT 0
)
`

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
    file_path TEXT PRIMARY KEY,                  -- Natural key: relative path from project root
    language TEXT NOT NULL,
    description TEXT NOT NULL,
    content_hash TEXT NOT NULL,                  -- SHA-256 of the source
    output_path TEXT NOT NULL,
    markdown TEXT NOT NULL,
    parsed_json TEXT NOT NULL,
    run_id TEXT NOT NULL,
    generated_at TEXT NOT NULL,                  -- ISO 8601
    FOREIGN KEY (run_id) REFERENCES runs(run_id)
)
`

const createSymbolsTable = `
CREATE TABLE IF NOT EXISTS symbols (
    symbol_id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path TEXT NOT NULL,
    kind TEXT NOT NULL,                          -- class, method, function, constant
    name TEXT NOT NULL,
    parent TEXT NOT NULL DEFAULT '',             -- Owning class for methods
    signature TEXT NOT NULL DEFAULT '',
    line INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (file_path) REFERENCES documents(file_path) ON DELETE CASCADE
)
`

const createCatalogMetadataTable = `
CREATE TABLE IF NOT EXISTS catalog_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

func getAllIndexes() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name)",
		"CREATE INDEX IF NOT EXISTS idx_symbols_file_path ON symbols(file_path)",
		"CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind)",
		"CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)",
		"CREATE INDEX IF NOT EXISTS idx_documents_language ON documents(language)",
	}
}
