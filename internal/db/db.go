package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with stratpilot-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS understandings (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL DEFAULT '',
    user_input TEXT NOT NULL,
    business_name TEXT NOT NULL DEFAULT '',
    industry TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_understandings_user ON understandings(user_id);

CREATE TABLE IF NOT EXISTS journey_sessions (
    id TEXT PRIMARY KEY,
    understanding_id TEXT NOT NULL REFERENCES understandings(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL DEFAULT '',
    journey_type TEXT NOT NULL,
    version_number INTEGER NOT NULL DEFAULT 1,
    current_framework_index INTEGER NOT NULL DEFAULT 0,
    completed_frameworks TEXT NOT NULL DEFAULT '[]',
    status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending','in_progress','completed','failed')),
    accumulated_context TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sessions_understanding ON journey_sessions(understanding_id);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON journey_sessions(status);

CREATE TABLE IF NOT EXISTS analysis_versions (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES journey_sessions(id) ON DELETE CASCADE,
    version_number INTEGER NOT NULL,
    version_label TEXT NOT NULL DEFAULT '',
    analysis_data TEXT NOT NULL DEFAULT '{}',
    decisions_data TEXT,
    selected_decisions TEXT,
    status TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft','converting','converted_to_program')),
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(session_id, version_number)
);

CREATE INDEX IF NOT EXISTS idx_versions_session ON analysis_versions(session_id);

CREATE TABLE IF NOT EXISTS citations (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL DEFAULT '',
    framework TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    snippet TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_citations_session ON citations(session_id);
`
