package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stratpilot/stratpilot/internal/db"
)

// Store persists analysis versions. Each (session, version number) pair is
// unique; concurrent creators race on that constraint and the loser retries
// once with the next number.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// NextVersionNumber picks the version number a new execution should write to.
// A session that already knows its version keeps it; otherwise the next free
// number for the session is used, starting at 1.
func (s *Store) NextVersionNumber(ctx context.Context, sessionID string, sessionVersion int) (int, error) {
	if sessionVersion > 0 {
		return sessionVersion, nil
	}
	var next int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version_number), 0) + 1
		FROM analysis_versions WHERE session_id = ?`, sessionID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next version number: %w", err)
	}
	return next, nil
}

// CreateVersion inserts a new version row. If the (session, number) slot was
// taken between number selection and insert, it retries exactly once with the
// next number and then gives up.
func (s *Store) CreateVersion(ctx context.Context, v *Version) (*Version, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = StatusDraft
	}
	if v.AnalysisData == nil {
		v.AnalysisData = map[string]any{}
	}
	if v.VersionLabel == "" {
		v.VersionLabel = fmt.Sprintf("Version %d", v.VersionNumber)
	}

	err := s.insertVersion(ctx, v)
	if isUniqueViolation(err) {
		v.VersionNumber++
		v.VersionLabel = fmt.Sprintf("Version %d", v.VersionNumber)
		err = s.insertVersion(ctx, v)
	}
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	return v, nil
}

func (s *Store) insertVersion(ctx context.Context, v *Version) error {
	data, err := json.Marshal(v.AnalysisData)
	if err != nil {
		return fmt.Errorf("marshal analysis data: %w", err)
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_versions
			(id, session_id, version_number, version_label, analysis_data,
			 status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.SessionID, v.VersionNumber, v.VersionLabel, string(data),
		string(v.Status), v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// GetVersion returns the version for a session and number, or (nil, nil).
func (s *Store) GetVersion(ctx context.Context, sessionID string, number int) (*Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, version_number, version_label, analysis_data,
		       decisions_data, selected_decisions, status, created_at, updated_at
		FROM analysis_versions
		WHERE session_id = ? AND version_number = ?`, sessionID, number)
	return scanVersion(row)
}

// GetByID returns a version by primary key, or (nil, nil).
func (s *Store) GetByID(ctx context.Context, id string) (*Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, version_number, version_label, analysis_data,
		       decisions_data, selected_decisions, status, created_at, updated_at
		FROM analysis_versions WHERE id = ?`, id)
	return scanVersion(row)
}

// ListBySession returns all versions for a session, oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]*Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, version_number, version_label, analysis_data,
		       decisions_data, selected_decisions, status, created_at, updated_at
		FROM analysis_versions
		WHERE session_id = ?
		ORDER BY version_number ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var out []*Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// MergeAnalysisData folds incoming framework results into the stored analysis
// data. The merge is additive at the top level: keys absent from incoming are
// kept as-is, keys present replace the stored entry. The one exception is a
// finalized root-cause analysis, which an automated re-run never overwrites.
// Returns the merged data as stored.
func (s *Store) MergeAnalysisData(ctx context.Context, sessionID string, number int, incoming map[string]any) (map[string]any, error) {
	existing, err := s.GetVersion(ctx, sessionID, number)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("version %d for session %s not found", number, sessionID)
	}

	merged := existing.AnalysisData
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range incoming {
		if k == "root_cause" && rootCauseFinalized(merged[k]) {
			continue
		}
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE analysis_versions SET analysis_data = ?, updated_at = ?
		WHERE session_id = ? AND version_number = ?`,
		string(data), time.Now().UTC(), sessionID, number)
	if err != nil {
		return nil, fmt.Errorf("update analysis data: %w", err)
	}
	return merged, nil
}

// SetDecisions replaces the decisions payload for a version. Unlike analysis
// data, decisions are replaced wholesale on every synthesis.
func (s *Store) SetDecisions(ctx context.Context, sessionID string, number int, decisions map[string]any) error {
	data, err := json.Marshal(decisions)
	if err != nil {
		return fmt.Errorf("marshal decisions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE analysis_versions SET decisions_data = ?, updated_at = ?
		WHERE session_id = ? AND version_number = ?`,
		string(data), time.Now().UTC(), sessionID, number)
	if err != nil {
		return fmt.Errorf("update decisions: %w", err)
	}
	return nil
}

// SetSelectedDecisions records the user's chosen options.
func (s *Store) SetSelectedDecisions(ctx context.Context, versionID string, selected map[string]any) error {
	data, err := json.Marshal(selected)
	if err != nil {
		return fmt.Errorf("marshal selected decisions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE analysis_versions SET selected_decisions = ?, updated_at = ?
		WHERE id = ?`, string(data), time.Now().UTC(), versionID)
	if err != nil {
		return fmt.Errorf("update selected decisions: %w", err)
	}
	return nil
}

// SetStatus moves a version through the draft/converting/converted lifecycle.
func (s *Store) SetStatus(ctx context.Context, versionID string, status VersionStatus) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE analysis_versions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), versionID)
	if err != nil {
		return fmt.Errorf("update version status: %w", err)
	}
	return nil
}

// rootCauseFinalized reports whether a stored root-cause entry carries a
// user-finalized tree in its output.
func rootCauseFinalized(entry any) bool {
	m, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	output, ok := m["output"].(map[string]any)
	if !ok {
		return false
	}
	finalized, ok := output["finalized"].(bool)
	return ok && finalized
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*Version, error) {
	var (
		v         Version
		data      string
		decisions sql.NullString
		selected  sql.NullString
		status    string
	)
	err := row.Scan(&v.ID, &v.SessionID, &v.VersionNumber, &v.VersionLabel,
		&data, &decisions, &selected, &status, &v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan version: %w", err)
	}
	v.Status = VersionStatus(status)
	if err := json.Unmarshal([]byte(data), &v.AnalysisData); err != nil {
		return nil, fmt.Errorf("decode analysis data: %w", err)
	}
	if decisions.Valid && decisions.String != "" {
		if err := json.Unmarshal([]byte(decisions.String), &v.DecisionsData); err != nil {
			return nil, fmt.Errorf("decode decisions data: %w", err)
		}
	}
	if selected.Valid && selected.String != "" {
		if err := json.Unmarshal([]byte(selected.String), &v.SelectedDecisions); err != nil {
			return nil, fmt.Errorf("decode selected decisions: %w", err)
		}
	}
	return &v, nil
}
