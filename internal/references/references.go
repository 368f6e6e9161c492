package references

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/stratpilot/stratpilot/internal/db"
	"github.com/stratpilot/stratpilot/internal/framework"
	"github.com/stratpilot/stratpilot/internal/journey"
)

// Citation is one source reference surfaced by a framework execution.
type Citation struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Framework string    `json:"framework"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Snippet   string    `json:"snippet"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink persists citations pulled out of framework outputs. Persistence is
// best effort: a failing sink must never fail the analysis that produced the
// citations, so callers use CollectFromResult which only logs errors.
type Sink struct {
	db *db.DB
}

func NewSink(database *db.DB) *Sink {
	return &Sink{db: database}
}

// CollectFromResult extracts the references array from a framework result and
// stores each entry. Errors are logged and swallowed. Returns the number of
// citations stored.
func (s *Sink) CollectFromResult(ctx context.Context, sessionID string, res framework.Result) int {
	if res.Failed() {
		return 0
	}
	refs, ok := res.Output["references"].([]any)
	if !ok || len(refs) == 0 {
		return 0
	}

	stored := 0
	for _, raw := range refs {
		ref, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		c := Citation{
			SessionID: sessionID,
			Framework: string(res.Framework),
			Title:     str(ref["title"]),
			URL:       str(ref["url"]),
			Snippet:   str(ref["snippet"]),
		}
		if c.Title == "" && c.URL == "" {
			continue
		}
		if err := s.insert(ctx, &c); err != nil {
			log.Printf("references: store citation for %s/%s: %v", sessionID, res.Framework, err)
			continue
		}
		stored++
	}
	return stored
}

func (s *Sink) insert(ctx context.Context, c *Citation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO citations (id, session_id, framework, title, url, snippet, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SessionID, c.Framework, c.Title, c.URL, c.Snippet, c.CreatedAt)
	return err
}

// ListBySession returns citations for a session, optionally filtered by
// framework.
func (s *Sink) ListBySession(ctx context.Context, sessionID string, fw journey.FrameworkID) ([]Citation, error) {
	query := `
		SELECT id, session_id, framework, title, url, snippet, created_at
		FROM citations WHERE session_id = ?`
	args := []any{sessionID}
	if fw != "" {
		query += ` AND framework = ?`
		args = append(args, string(fw))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query citations: %w", err)
	}
	defer rows.Close()

	var out []Citation
	for rows.Next() {
		var c Citation
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Framework, &c.Title, &c.URL, &c.Snippet, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan citation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
