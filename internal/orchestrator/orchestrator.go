package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/stratpilot/stratpilot/internal/analysis"
	"github.com/stratpilot/stratpilot/internal/bridge"
	"github.com/stratpilot/stratpilot/internal/config"
	"github.com/stratpilot/stratpilot/internal/decisions"
	"github.com/stratpilot/stratpilot/internal/framework"
	"github.com/stratpilot/stratpilot/internal/journey"
	"github.com/stratpilot/stratpilot/internal/references"
	"github.com/stratpilot/stratpilot/internal/session"
	"github.com/stratpilot/stratpilot/internal/stream"
	"github.com/stratpilot/stratpilot/internal/understanding"
)

var (
	ErrUnknownJourney          = errors.New("unknown journey type")
	ErrJourneyUnavailable      = errors.New("journey type is not available")
	ErrUnderstandingNotFound   = errors.New("understanding not found")
	ErrSessionNotFound         = errors.New("session not found")
	ErrExecutionAlreadyRunning = errors.New("an execution is already running for this session")
)

// Orchestrator drives journeys end to end: it creates sessions, walks the
// journey's framework sequence, carries bridge enhancements between steps,
// persists each result as it lands, and closes out with decision synthesis.
//
// Framework failures are contained as in-band error payloads and never stop
// the walk. Only infrastructure failures (missing session, persistence
// errors) abort an execution.
type Orchestrator struct {
	cfg            *config.Config
	journeys       *journey.Registry
	frameworks     *framework.Registry
	bridges        *bridge.Registry
	sessions       *session.Store
	versions       *analysis.Store
	understandings *understanding.Store
	citations      *references.Sink
	synthesizer    *decisions.Synthesizer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Deps bundles everything an Orchestrator needs.
type Deps struct {
	Config         *config.Config
	Journeys       *journey.Registry
	Frameworks     *framework.Registry
	Bridges        *bridge.Registry
	Sessions       *session.Store
	Versions       *analysis.Store
	Understandings *understanding.Store
	Citations      *references.Sink
	Synthesizer    *decisions.Synthesizer
}

func New(d Deps) *Orchestrator {
	return &Orchestrator{
		cfg:            d.Config,
		journeys:       d.Journeys,
		frameworks:     d.Frameworks,
		bridges:        d.Bridges,
		sessions:       d.Sessions,
		versions:       d.Versions,
		understandings: d.Understandings,
		citations:      d.Citations,
		synthesizer:    d.Synthesizer,
	}
}

// StartRequest asks for a new journey session.
type StartRequest struct {
	UnderstandingID string `json:"understanding_id"`
	UserID          string `json:"user_id"`
	JourneyType     string `json:"journey_type"`
}

// StartResult is returned to the caller so the client can navigate to the
// journey's first page.
type StartResult struct {
	Session       *session.Session `json:"session"`
	NavigationURL string           `json:"navigation_url"`
}

// StartJourney validates the journey type and understanding, creates the
// session, and allocates the analysis version it will write to.
func (o *Orchestrator) StartJourney(ctx context.Context, req StartRequest) (*StartResult, error) {
	def := o.journeys.Get(req.JourneyType)
	if def == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJourney, req.JourneyType)
	}
	if !def.Available {
		return nil, fmt.Errorf("%w: %q", ErrJourneyUnavailable, req.JourneyType)
	}

	u, err := o.understandings.GetByID(ctx, req.UnderstandingID)
	if err != nil {
		return nil, fmt.Errorf("load understanding: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnderstandingNotFound, req.UnderstandingID)
	}

	sess, err := o.sessions.Create(ctx, &session.Session{
		UnderstandingID: req.UnderstandingID,
		UserID:          req.UserID,
		JourneyType:     req.JourneyType,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	number, err := o.versions.NextVersionNumber(ctx, sess.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("allocate version: %w", err)
	}
	v, err := o.versions.CreateVersion(ctx, &analysis.Version{SessionID: sess.ID, VersionNumber: number})
	if err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}
	if err := o.sessions.SetVersionNumber(ctx, sess.ID, v.VersionNumber); err != nil {
		return nil, fmt.Errorf("record version on session: %w", err)
	}
	sess.VersionNumber = v.VersionNumber

	return &StartResult{
		Session:       sess,
		NavigationURL: journey.FirstPageURL(def, sess.ID),
	}, nil
}

// ExecuteOptions tunes one execution run.
type ExecuteOptions struct {
	// Force re-runs frameworks that are already marked completed.
	Force bool
}

// sessionLock returns the mutex serializing executions of one session.
func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.locks == nil {
		o.locks = map[string]*sync.Mutex{}
	}
	if _, ok := o.locks[sessionID]; !ok {
		o.locks[sessionID] = &sync.Mutex{}
	}
	return o.locks[sessionID]
}

// ExecuteJourney runs (or resumes) a session's framework sequence, publishing
// progress to pub. Executions of the same session run one at a time; a second
// caller blocks until the first finishes, then resumes from the updated
// cursor. The returned error covers infrastructure failures only.
func (o *Orchestrator) ExecuteJourney(ctx context.Context, sessionID string, opts ExecuteOptions, pub stream.Publisher) error {
	if pub == nil {
		pub = stream.Discard
	}

	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if o.cfg.Timeouts.JourneySec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.cfg.Timeouts.JourneySec)*time.Second)
		defer cancel()
	}

	sess, err := o.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return o.fail(ctx, pub, nil, fmt.Errorf("load session: %w", err))
	}
	if sess == nil {
		return o.fail(ctx, pub, nil, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID))
	}

	def := o.journeys.Get(sess.JourneyType)
	if def == nil {
		return o.fail(ctx, pub, sess, fmt.Errorf("%w: %q", ErrUnknownJourney, sess.JourneyType))
	}

	u, err := o.understandings.GetByID(ctx, sess.UnderstandingID)
	if err != nil || u == nil {
		if err == nil {
			err = fmt.Errorf("%w: %q", ErrUnderstandingNotFound, sess.UnderstandingID)
		}
		return o.fail(ctx, pub, sess, fmt.Errorf("load understanding: %w", err))
	}

	number, version, err := o.ensureVersion(ctx, sess)
	if err != nil {
		return o.fail(ctx, pub, sess, err)
	}

	if opts.Force {
		sess.CompletedFrameworks = []journey.FrameworkID{}
	}

	prior := decodePriorResults(version.AnalysisData)
	total := o.executableCount(def)
	done := o.completedExecutable(def, sess)

	pub.Publish(stream.Event{
		Type:     stream.EventContext,
		Message:  fmt.Sprintf("starting %s journey", def.Type),
		Progress: percent(done, total),
		Data:     map[string]any{"session_id": sess.ID, "version_number": number},
	})

	sess.Status = session.StatusInProgress
	if err := o.sessions.UpdateProgress(ctx, sess); err != nil {
		return o.fail(ctx, pub, sess, fmt.Errorf("mark session in progress: %w", err))
	}

	for i, id := range def.Frameworks {
		if err := ctx.Err(); err != nil {
			return o.fail(ctx, pub, sess, fmt.Errorf("journey aborted: %w", err))
		}

		if o.frameworks.Interactive(id) {
			pub.Publish(stream.Event{
				Type:      stream.EventContext,
				Framework: string(id),
				Message:   fmt.Sprintf("%s requires direct input and is skipped during automated execution", id),
				Progress:  percent(done, total),
			})
			continue
		}
		if sess.Completed(id) {
			continue
		}

		pub.Publish(stream.Event{
			Type:      stream.EventQuery,
			Framework: string(id),
			Message:   fmt.Sprintf("running %s analysis", id),
			Progress:  percent(done, total),
		})

		enhancements := o.collectEnhancements(def, i, u.UserInput, prior, pub)

		res := o.executeFramework(ctx, id, framework.Context{
			Input:              u.UserInput,
			BusinessName:       u.BusinessName,
			PreviousResults:    prior,
			BridgeEnhancements: enhancements,
		})

		if _, err := o.versions.MergeAnalysisData(ctx, sess.ID, number, map[string]any{
			string(id): resultEntry(res),
		}); err != nil {
			return o.fail(ctx, pub, sess, fmt.Errorf("persist %s result: %w", id, err))
		}
		o.citations.CollectFromResult(ctx, sess.ID, res)

		prior[id] = res
		done++
		sess.CompletedFrameworks = append(sess.CompletedFrameworks, id)
		sess.CurrentFrameworkIndex = i + 1
		if res.Summary != nil {
			sess.AccumulatedContext[string(id)] = res.Summary
		}
		if err := o.sessions.UpdateProgress(ctx, sess); err != nil {
			return o.fail(ctx, pub, sess, fmt.Errorf("persist session cursor: %w", err))
		}

		e := stream.Event{
			Type:      stream.EventProgress,
			Framework: string(id),
			Progress:  percent(done, total),
			Data:      map[string]any{"duration_ms": res.DurationMS},
		}
		if res.Failed() {
			e.Message = fmt.Sprintf("%s failed and was recorded with an error payload", id)
		} else {
			e.Message = fmt.Sprintf("%s analysis complete", id)
		}
		pub.Publish(e)
	}

	pub.Publish(stream.Event{
		Type:     stream.EventSynthesis,
		Message:  "synthesizing decisions from completed analyses",
		Progress: percent(done, total),
	})

	current, err := o.versions.GetVersion(ctx, sess.ID, number)
	if err != nil || current == nil {
		if err == nil {
			err = fmt.Errorf("version %d vanished for session %s", number, sess.ID)
		}
		return o.fail(ctx, pub, sess, fmt.Errorf("load analysis for synthesis: %w", err))
	}

	synthCtx := ctx
	if o.cfg.Timeouts.SynthesisSec > 0 {
		var cancel context.CancelFunc
		synthCtx, cancel = context.WithTimeout(ctx, time.Duration(o.cfg.Timeouts.SynthesisSec)*time.Second)
		defer cancel()
	}
	set := o.synthesizer.Synthesize(synthCtx, u.UserInput, current.AnalysisData)
	if err := o.versions.SetDecisions(ctx, sess.ID, number, set.Map()); err != nil {
		return o.fail(ctx, pub, sess, fmt.Errorf("persist decisions: %w", err))
	}

	sess.Status = session.StatusCompleted
	if err := o.sessions.UpdateProgress(ctx, sess); err != nil {
		return o.fail(ctx, pub, sess, fmt.Errorf("mark session completed: %w", err))
	}

	nextURL := journey.BuildPageURL(journey.NextPageAfterResearch(def), sess.ID)
	pub.Publish(stream.Event{
		Type:     stream.EventComplete,
		Message:  "journey complete",
		Progress: 100,
		Data: map[string]any{
			"next_url":       nextURL,
			"version_number": number,
			"fallback":       set.Fallback,
		},
	})
	return nil
}

// ensureVersion loads (or lazily creates) the analysis version this session
// writes to.
func (o *Orchestrator) ensureVersion(ctx context.Context, sess *session.Session) (int, *analysis.Version, error) {
	number, err := o.versions.NextVersionNumber(ctx, sess.ID, sess.VersionNumber)
	if err != nil {
		return 0, nil, fmt.Errorf("resolve version number: %w", err)
	}
	v, err := o.versions.GetVersion(ctx, sess.ID, number)
	if err != nil {
		return 0, nil, fmt.Errorf("load version: %w", err)
	}
	if v == nil {
		v, err = o.versions.CreateVersion(ctx, &analysis.Version{SessionID: sess.ID, VersionNumber: number})
		if err != nil {
			return 0, nil, fmt.Errorf("create version: %w", err)
		}
		number = v.VersionNumber
	}
	if sess.VersionNumber != number {
		if err := o.sessions.SetVersionNumber(ctx, sess.ID, number); err != nil {
			return 0, nil, fmt.Errorf("record version on session: %w", err)
		}
		sess.VersionNumber = number
	}
	return number, v, nil
}

// collectEnhancements applies every registered bridge from an earlier
// successful framework into the one about to run. A failing bridge only
// costs its enhancement.
func (o *Orchestrator) collectEnhancements(def *journey.Definition, index int, input string, prior map[journey.FrameworkID]framework.Result, pub stream.Publisher) map[string]any {
	target := def.Frameworks[index]
	bctx := bridge.Context{Input: input, PriorResults: prior}

	var merged map[string]any
	for _, source := range def.Frameworks[:index] {
		res, ok := prior[source]
		if !ok || res.Failed() {
			continue
		}
		enh, ok := o.bridges.Apply(source, target, res.Output, bctx)
		if !ok {
			continue
		}
		if merged == nil {
			merged = map[string]any{}
		}
		for k, v := range enh {
			merged[k] = v
		}
		pub.Publish(stream.Event{
			Type:      stream.EventDebug,
			Framework: string(target),
			Message:   fmt.Sprintf("applied %s insights to %s", source, target),
		})
	}
	return merged
}

// executeFramework runs one framework under its per-call timeout.
func (o *Orchestrator) executeFramework(ctx context.Context, id journey.FrameworkID, fc framework.Context) framework.Result {
	if o.cfg.Timeouts.FrameworkSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.cfg.Timeouts.FrameworkSec)*time.Second)
		defer cancel()
	}
	return o.frameworks.Execute(ctx, id, fc)
}

// executableCount counts the frameworks the orchestrator will actually run.
func (o *Orchestrator) executableCount(def *journey.Definition) int {
	n := 0
	for _, id := range def.Frameworks {
		if !o.frameworks.Interactive(id) {
			n++
		}
	}
	return n
}

func (o *Orchestrator) completedExecutable(def *journey.Definition, sess *session.Session) int {
	n := 0
	for _, id := range def.Frameworks {
		if !o.frameworks.Interactive(id) && sess.Completed(id) {
			n++
		}
	}
	return n
}

// fail emits the single terminal error event, marks the session failed, and
// returns the error to the caller.
func (o *Orchestrator) fail(ctx context.Context, pub stream.Publisher, sess *session.Session, err error) error {
	pub.Publish(stream.Event{
		Type:    stream.EventError,
		Message: err.Error(),
	})
	if sess != nil {
		if serr := o.sessions.SetStatus(context.WithoutCancel(ctx), sess.ID, session.StatusFailed); serr != nil {
			log.Printf("orchestrator: mark session %s failed: %v", sess.ID, serr)
		}
	}
	return err
}

// percent maps the framework cursor onto the 0..100 progress estimate the
// stream carries.
func percent(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// resultEntry converts a framework result into the generic JSON shape stored
// in analysis data.
func resultEntry(res framework.Result) map[string]any {
	raw, err := json.Marshal(res)
	if err != nil {
		return map[string]any{"framework": string(res.Framework), "output": map[string]any{"error": true, "message": err.Error()}}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"framework": string(res.Framework), "output": map[string]any{"error": true, "message": err.Error()}}
	}
	return m
}

// decodePriorResults rebuilds typed results from stored analysis data so
// bridges can run on resume.
func decodePriorResults(data map[string]any) map[journey.FrameworkID]framework.Result {
	out := make(map[journey.FrameworkID]framework.Result, len(data))
	for key, entry := range data {
		raw, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		var res framework.Result
		if err := json.Unmarshal(raw, &res); err != nil {
			continue
		}
		if res.Framework == "" {
			res.Framework = journey.FrameworkID(key)
		}
		out[journey.FrameworkID(key)] = res
	}
	return out
}
