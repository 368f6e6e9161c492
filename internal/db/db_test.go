package db

import (
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Verify tables exist by querying each one.
	tables := []string{
		"understandings", "journey_sessions", "analysis_versions", "citations",
	}

	for _, table := range tables {
		var count int
		err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestVersionUniqueness(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	if _, err := d.Exec(`INSERT INTO understandings (id, user_input) VALUES ('u1', 'input')`); err != nil {
		t.Fatalf("insert understanding: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO journey_sessions (id, understanding_id, journey_type) VALUES ('s1', 'u1', 'market_entry')`); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	if _, err := d.Exec(`INSERT INTO analysis_versions (id, session_id, version_number) VALUES ('v1', 's1', 1)`); err != nil {
		t.Fatalf("insert version: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO analysis_versions (id, session_id, version_number) VALUES ('v2', 's1', 1)`); err == nil {
		t.Fatal("expected UNIQUE(session_id, version_number) violation")
	}
}
