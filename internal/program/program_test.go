package program

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stratpilot/stratpilot/internal/analysis"
	"github.com/stratpilot/stratpilot/internal/db"
	"github.com/stratpilot/stratpilot/internal/reasoning"
	"github.com/stratpilot/stratpilot/internal/session"
	"github.com/stratpilot/stratpilot/internal/understanding"
)

type scriptedClient struct {
	content string
	err     error
}

func (c *scriptedClient) Generate(ctx context.Context, req reasoning.Request) (*reasoning.Response, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &reasoning.Response{Content: c.content}, nil
}

func (c *scriptedClient) Name() string { return "scripted" }

const validProgram = `{
	"name": "Heat pump entry",
	"objective": "Enter the residential heat pump market",
	"workstreams": [{"id": "ws_cert", "title": "Installer certification", "description": "Train crews", "milestones": []}],
	"timeline": {"duration_months": 9, "phases": []},
	"resources": [],
	"risks": [],
	"financials": {}
}`

type fixture struct {
	manager  *Manager
	versions *analysis.Store
	version  *analysis.Version
}

func newFixture(t *testing.T, client reasoning.Client) *fixture {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctx := context.Background()
	understandings := understanding.NewStore(database)
	u, err := understandings.Create(ctx, &understanding.Understanding{UserInput: "HVAC installer"})
	if err != nil {
		t.Fatalf("seed understanding: %v", err)
	}

	sessions := session.NewStore(database)
	sess, err := sessions.Create(ctx, &session.Session{UnderstandingID: u.ID, JourneyType: "market_entry"})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	versions := analysis.NewStore(database)
	v, err := versions.CreateVersion(ctx, &analysis.Version{SessionID: sess.ID, VersionNumber: 1})
	if err != nil {
		t.Fatalf("seed version: %v", err)
	}
	if err := versions.SetDecisions(ctx, sess.ID, 1, map[string]any{
		"decision_points": []any{map[string]any{"id": "dp1", "title": "Entry mode"}},
	}); err != nil {
		t.Fatalf("seed decisions: %v", err)
	}
	v, _ = versions.GetByID(ctx, v.ID)

	manager := NewManager(NewGenerator(client, "test-model"), versions, sessions, understandings, 5*time.Second)
	return &fixture{manager: manager, versions: versions, version: v}
}

func waitForJob(t *testing.T, m *Manager, jobID string) *Job {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		job := m.Get(jobID)
		if job != nil && (job.Status == JobCompleted || job.Status == JobFailed) {
			return job
		}
		select {
		case <-deadline:
			t.Fatalf("job %s did not finish", jobID)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStartGeneratesProgram(t *testing.T) {
	f := newFixture(t, &scriptedClient{content: validProgram})

	job, err := f.manager.Start(context.Background(), f.version.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	done := waitForJob(t, f.manager, job.ID)
	if done.Status != JobCompleted {
		t.Fatalf("expected completed, got %q (%s)", done.Status, done.Error)
	}
	if done.Progress != 100 {
		t.Fatalf("completed job progress = %d, want 100", done.Progress)
	}
	if done.Result["name"] != "Heat pump entry" {
		t.Fatalf("unexpected result: %v", done.Result)
	}

	v, _ := f.versions.GetByID(context.Background(), f.version.ID)
	if v.Status != analysis.StatusConvertedToProgram {
		t.Fatalf("expected converted status, got %q", v.Status)
	}
}

func TestStartIsIdempotentPerSession(t *testing.T) {
	f := newFixture(t, &scriptedClient{content: validProgram})
	ctx := context.Background()

	first, err := f.manager.Start(ctx, f.version.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := f.manager.Start(ctx, f.version.ID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same job, got %s and %s", first.ID, second.ID)
	}

	if got := f.manager.GetBySession(f.version.SessionID); got == nil || got.ID != first.ID {
		t.Fatalf("session lookup mismatch: %+v", got)
	}
}

func TestGenerationFallsBack(t *testing.T) {
	f := newFixture(t, &scriptedClient{err: errors.New("provider down")})

	job, err := f.manager.Start(context.Background(), f.version.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	done := waitForJob(t, f.manager, job.ID)
	if done.Status != JobCompleted {
		t.Fatalf("fallback should still complete, got %q", done.Status)
	}
	if done.Result["fallback"] != true {
		t.Fatal("expected fallback marker")
	}
	workstreams := done.Result["workstreams"].([]any)
	if len(workstreams) != 1 {
		t.Fatalf("expected one workstream per decision point, got %d", len(workstreams))
	}
	ws := workstreams[0].(map[string]any)
	if ws["title"] != "Entry mode" {
		t.Fatalf("workstream should derive from the decision point, got %v", ws)
	}
}

// blockingClient holds Generate until released so the test can observe the
// job mid-generation.
type blockingClient struct {
	release chan struct{}
	content string
}

func (c *blockingClient) Generate(ctx context.Context, req reasoning.Request) (*reasoning.Response, error) {
	select {
	case <-c.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &reasoning.Response{Content: c.content}, nil
}

func (c *blockingClient) Name() string { return "blocking" }

func TestJobProgressAdvancesThroughMilestones(t *testing.T) {
	client := &blockingClient{release: make(chan struct{}), content: validProgram}
	f := newFixture(t, client)

	job, err := f.manager.Start(context.Background(), f.version.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if job.Progress != 0 {
		t.Fatalf("pending job progress = %d, want 0", job.Progress)
	}

	deadline := time.After(5 * time.Second)
	for {
		got := f.manager.Get(job.ID)
		if got.Status == JobRunning && got.Progress >= 25 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job never reached the pre-generation milestone, at %d%%", got.Progress)
		case <-time.After(10 * time.Millisecond):
		}
	}

	close(client.release)
	done := waitForJob(t, f.manager, job.ID)
	if done.Status != JobCompleted || done.Progress != 100 {
		t.Fatalf("expected completed at 100%%, got %q at %d%%", done.Status, done.Progress)
	}
}

func TestStartUnknownVersion(t *testing.T) {
	f := newFixture(t, &scriptedClient{content: validProgram})
	if _, err := f.manager.Start(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown version")
	}
}

func TestFallbackProgramWithoutDecisions(t *testing.T) {
	prog := FallbackProgram(&analysis.Version{})
	workstreams := prog["workstreams"].([]any)
	if len(workstreams) != 1 {
		t.Fatalf("expected a single default workstream, got %d", len(workstreams))
	}
	if prog["timeline"] == nil || prog["financials"] == nil {
		t.Fatal("fallback program must be structurally complete")
	}
}
