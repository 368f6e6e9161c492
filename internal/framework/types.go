package framework

import (
	"context"
	"time"

	"github.com/stratpilot/stratpilot/internal/journey"
)

// Output is the JSON-shaped payload a framework produces. A failed execution
// is represented in-band as {"error": true, "message": ...} rather than by an
// error return, so one framework's failure never aborts a journey's bookkeeping.
type Output map[string]any

// Result is the normalized envelope every executor call produces.
type Result struct {
	Framework  journey.FrameworkID `json:"framework"`
	Output     Output              `json:"output"`
	Summary    map[string]any      `json:"summary,omitempty"`
	DurationMS int64               `json:"duration_ms"`
	ExecutedAt time.Time           `json:"executed_at"`
}

// Failed reports whether the result carries an in-band error payload.
func (r Result) Failed() bool {
	v, ok := r.Output["error"].(bool)
	return ok && v
}

// Context is the strategic context handed to an executor: the original user
// input, everything produced so far, and any bridge enhancement for this step.
type Context struct {
	Input              string
	BusinessName       string
	PreviousResults    map[journey.FrameworkID]Result
	BridgeEnhancements map[string]any
}

// Executor runs one strategic-analysis framework. Implementations are
// pluggable; the registry standardizes dispatch and error containment.
type Executor interface {
	ID() journey.FrameworkID
	// Interactive reports whether this framework needs direct user input and
	// must therefore never be auto-executed by the orchestrator.
	Interactive() bool
	Execute(ctx context.Context, fc Context) (Output, map[string]any, error)
}
