package session

import (
	"time"

	"github.com/stratpilot/stratpilot/internal/journey"
)

// Status represents the lifecycle stage of a journey session.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Session identifies one run of a journey for one strategic input. The
// session id is the canonical key everywhere; the understanding id is carried
// only as a foreign key, never used as a fallback lookup.
type Session struct {
	ID                    string                `json:"id"`
	UnderstandingID       string                `json:"understanding_id"`
	UserID                string                `json:"user_id"`
	JourneyType           string                `json:"journey_type"`
	VersionNumber         int                   `json:"version_number"`
	CurrentFrameworkIndex int                   `json:"current_framework_index"`
	CompletedFrameworks   []journey.FrameworkID `json:"completed_frameworks"`
	Status                Status                `json:"status"`
	AccumulatedContext    map[string]any        `json:"accumulated_context"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// Completed reports whether the given framework has already been executed in
// this session.
func (s *Session) Completed(id journey.FrameworkID) bool {
	for _, f := range s.CompletedFrameworks {
		if f == id {
			return true
		}
	}
	return false
}
