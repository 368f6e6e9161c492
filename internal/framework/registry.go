package framework

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stratpilot/stratpilot/internal/journey"
)

// Registry maps framework identifiers to executors and standardizes dispatch:
// every call returns a Result envelope, and executor failures (including
// panics) are contained as in-band error payloads.
type Registry struct {
	executors map[journey.FrameworkID]Executor
}

// NewRegistry creates an empty executor registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[journey.FrameworkID]Executor)}
}

// Register adds an executor. Registering the same id twice replaces the
// earlier executor.
func (r *Registry) Register(e Executor) {
	r.executors[e.ID()] = e
}

// Get returns the executor for the given framework, or nil.
func (r *Registry) Get(id journey.FrameworkID) Executor {
	return r.executors[id]
}

// Interactive reports whether the given framework is tagged as requiring
// direct user input. Unknown frameworks are not interactive.
func (r *Registry) Interactive(id journey.FrameworkID) bool {
	if e, ok := r.executors[id]; ok {
		return e.Interactive()
	}
	return false
}

// Execute dispatches to the executor for id and normalizes the outcome.
// It never returns an error: a missing executor, an executor error, or an
// executor panic all become an error payload inside Result.Output.
func (r *Registry) Execute(ctx context.Context, id journey.FrameworkID, fc Context) Result {
	start := time.Now()
	result := Result{
		Framework:  id,
		ExecutedAt: start.UTC(),
	}

	e, ok := r.executors[id]
	if !ok {
		result.Output = errorOutput(fmt.Sprintf("no executor registered for framework %q", id))
		result.DurationMS = time.Since(start).Milliseconds()
		return result
	}

	output, summary, err := r.executeContained(ctx, e, fc)
	if err != nil {
		log.Printf("framework: %s failed: %v", id, err)
		result.Output = errorOutput(err.Error())
	} else {
		result.Output = output
		result.Summary = summary
	}
	result.DurationMS = time.Since(start).Milliseconds()
	return result
}

// executeContained runs the executor, converting a panic into an error.
func (r *Registry) executeContained(ctx context.Context, e Executor, fc Context) (out Output, summary map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("executor panic: %v", rec)
		}
	}()
	return e.Execute(ctx, fc)
}

func errorOutput(message string) Output {
	return Output{"error": true, "message": message}
}
