package program

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stratpilot/stratpilot/internal/analysis"
	"github.com/stratpilot/stratpilot/internal/session"
	"github.com/stratpilot/stratpilot/internal/understanding"
)

// JobStatus is the lifecycle of one generation job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job tracks one asynchronous program generation. Progress is a percent in
// [0, 100] advanced at the generation milestones so pollers see movement
// between running and completed.
type Job struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	VersionID string         `json:"version_id"`
	Status    JobStatus      `json:"status"`
	Progress  int            `json:"progress"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Manager runs program generation jobs in the background. Jobs are held in
// memory only: a generation is cheap to redo after a restart, and the durable
// outcome (the converted version) lives in the analysis store. At most one
// live job exists per session; repeated starts return the existing job.
type Manager struct {
	generator      *Generator
	versions       *analysis.Store
	sessions       *session.Store
	understandings *understanding.Store
	timeout        time.Duration

	mu        sync.Mutex
	jobs      map[string]*Job // by job id
	bySession map[string]*Job
}

func NewManager(generator *Generator, versions *analysis.Store, sessions *session.Store, understandings *understanding.Store, timeout time.Duration) *Manager {
	return &Manager{
		generator:      generator,
		versions:       versions,
		sessions:       sessions,
		understandings: understandings,
		timeout:        timeout,
		jobs:           map[string]*Job{},
		bySession:      map[string]*Job{},
	}
}

// Start begins generating a program for the given version, or returns the
// session's existing job when one is already pending, running, or completed.
// A previously failed job is replaced.
func (m *Manager) Start(ctx context.Context, versionID string) (*Job, error) {
	v, err := m.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("load version: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("version %q not found", versionID)
	}

	m.mu.Lock()
	if existing, ok := m.bySession[v.SessionID]; ok && existing.Status != JobFailed {
		snap := m.snapshot(existing)
		m.mu.Unlock()
		return snap, nil
	}

	job := &Job{
		ID:        uuid.NewString(),
		SessionID: v.SessionID,
		VersionID: versionID,
		Status:    JobPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.jobs[job.ID] = job
	m.bySession[v.SessionID] = job
	snap := m.snapshot(job)
	m.mu.Unlock()

	go m.run(job.ID, v)
	return snap, nil
}

// Get returns a job by id, or nil.
func (m *Manager) Get(jobID string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(m.jobs[jobID])
}

// GetBySession returns the session's current job, or nil.
func (m *Manager) GetBySession(sessionID string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(m.bySession[sessionID])
}

// run executes the job outside any request context so a disconnecting client
// does not abort the generation.
func (m *Manager) run(jobID string, v *analysis.Version) {
	ctx := context.Background()
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	m.setStatus(jobID, JobRunning, nil, "")
	m.setProgress(jobID, 10)
	if err := m.versions.SetStatus(ctx, v.ID, analysis.StatusConverting); err != nil {
		log.Printf("program: mark version converting: %v", err)
	}
	m.setProgress(jobID, 25)

	input := m.lookupInput(ctx, v.SessionID)
	result := m.generator.Generate(ctx, input, v)
	m.setProgress(jobID, 80)

	if err := m.versions.SetStatus(ctx, v.ID, analysis.StatusConvertedToProgram); err != nil {
		m.setStatus(jobID, JobFailed, nil, fmt.Sprintf("persist conversion status: %v", err))
		return
	}
	m.setStatus(jobID, JobCompleted, result, "")
}

func (m *Manager) lookupInput(ctx context.Context, sessionID string) string {
	sess, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil || sess == nil {
		return ""
	}
	u, err := m.understandings.GetByID(ctx, sess.UnderstandingID)
	if err != nil || u == nil {
		return ""
	}
	return u.UserInput
}

func (m *Manager) setStatus(jobID string, status JobStatus, result map[string]any, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	job.Status = status
	job.Result = result
	job.Error = errMsg
	if status == JobCompleted {
		job.Progress = 100
	}
	job.UpdatedAt = time.Now().UTC()
}

func (m *Manager) setProgress(jobID string, pct int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || pct <= job.Progress {
		return
	}
	job.Progress = pct
	job.UpdatedAt = time.Now().UTC()
}

// snapshot copies a job so callers never see concurrent mutation. Must be
// called with the lock held, or with a job no longer shared.
func (m *Manager) snapshot(job *Job) *Job {
	if job == nil {
		return nil
	}
	cp := *job
	return &cp
}
