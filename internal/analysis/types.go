package analysis

import "time"

// VersionStatus tracks what has been done with a saved analysis version.
type VersionStatus string

const (
	StatusDraft              VersionStatus = "draft"
	StatusConverting         VersionStatus = "converting"
	StatusConvertedToProgram VersionStatus = "converted_to_program"
)

// Version is one saved snapshot of a session's analysis. AnalysisData maps
// framework ids to their result envelopes; DecisionsData holds the synthesized
// decision set once the journey completes.
type Version struct {
	ID                string         `json:"id"`
	SessionID         string         `json:"session_id"`
	VersionNumber     int            `json:"version_number"`
	VersionLabel      string         `json:"version_label"`
	AnalysisData      map[string]any `json:"analysis_data"`
	DecisionsData     map[string]any `json:"decisions_data,omitempty"`
	SelectedDecisions map[string]any `json:"selected_decisions,omitempty"`
	Status            VersionStatus  `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
