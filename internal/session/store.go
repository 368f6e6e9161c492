package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stratpilot/stratpilot/internal/db"
	"github.com/stratpilot/stratpilot/internal/journey"
)

// Store persists journey sessions in sqlite.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new session. A zero ID is replaced with a fresh uuid and
// empty collections are normalized so the row never holds NULL JSON.
func (s *Store) Create(ctx context.Context, sess *Session) (*Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Status == "" {
		sess.Status = StatusPending
	}
	if sess.CompletedFrameworks == nil {
		sess.CompletedFrameworks = []journey.FrameworkID{}
	}
	if sess.AccumulatedContext == nil {
		sess.AccumulatedContext = map[string]any{}
	}
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	completed, err := json.Marshal(sess.CompletedFrameworks)
	if err != nil {
		return nil, fmt.Errorf("marshal completed frameworks: %w", err)
	}
	accumulated, err := json.Marshal(sess.AccumulatedContext)
	if err != nil {
		return nil, fmt.Errorf("marshal accumulated context: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journey_sessions
			(id, understanding_id, user_id, journey_type, version_number,
			 current_framework_index, completed_frameworks, status,
			 accumulated_context, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UnderstandingID, sess.UserID, sess.JourneyType,
		sess.VersionNumber, sess.CurrentFrameworkIndex, string(completed),
		string(sess.Status), string(accumulated), sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetByID returns the session or (nil, nil) when no row exists.
func (s *Store) GetByID(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, understanding_id, user_id, journey_type, version_number,
		       current_framework_index, completed_frameworks, status,
		       accumulated_context, created_at, updated_at
		FROM journey_sessions WHERE id = ?`, id)
	return scanSession(row)
}

// ListByUnderstanding returns sessions for an understanding, newest first.
func (s *Store) ListByUnderstanding(ctx context.Context, understandingID string) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, understanding_id, user_id, journey_type, version_number,
		       current_framework_index, completed_frameworks, status,
		       accumulated_context, created_at, updated_at
		FROM journey_sessions
		WHERE understanding_id = ?
		ORDER BY created_at DESC`, understandingID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// UpdateProgress persists the execution cursor after a framework finishes.
// The cursor, completed set and accumulated context move together so a crash
// between frameworks never leaves them out of step.
func (s *Store) UpdateProgress(ctx context.Context, sess *Session) error {
	completed, err := json.Marshal(sess.CompletedFrameworks)
	if err != nil {
		return fmt.Errorf("marshal completed frameworks: %w", err)
	}
	accumulated, err := json.Marshal(sess.AccumulatedContext)
	if err != nil {
		return fmt.Errorf("marshal accumulated context: %w", err)
	}
	sess.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE journey_sessions
		SET current_framework_index = ?, completed_frameworks = ?,
		    accumulated_context = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		sess.CurrentFrameworkIndex, string(completed), string(accumulated),
		string(sess.Status), sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update session progress: %w", err)
	}
	return nil
}

// SetStatus updates only the lifecycle status.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE journey_sessions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// SetVersionNumber records which analysis version this session writes to.
func (s *Store) SetVersionNumber(ctx context.Context, id string, version int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE journey_sessions SET version_number = ?, updated_at = ? WHERE id = ?`,
		version, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update session version: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		sess        Session
		completed   string
		accumulated string
		status      string
	)
	err := row.Scan(&sess.ID, &sess.UnderstandingID, &sess.UserID,
		&sess.JourneyType, &sess.VersionNumber, &sess.CurrentFrameworkIndex,
		&completed, &status, &accumulated, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	sess.Status = Status(status)
	if err := json.Unmarshal([]byte(completed), &sess.CompletedFrameworks); err != nil {
		return nil, fmt.Errorf("decode completed frameworks: %w", err)
	}
	if err := json.Unmarshal([]byte(accumulated), &sess.AccumulatedContext); err != nil {
		return nil, fmt.Errorf("decode accumulated context: %w", err)
	}
	return &sess, nil
}
