package session

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/stratpilot/stratpilot/internal/db"
	"github.com/stratpilot/stratpilot/internal/journey"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	underID := uuid.NewString()
	_, err = database.Exec(
		`INSERT INTO understandings (id, user_input) VALUES (?, ?)`,
		underID, "regional bakery chain considering expansion",
	)
	if err != nil {
		t.Fatalf("seed understanding: %v", err)
	}
	return NewStore(database), underID
}

func TestCreateAndGet(t *testing.T) {
	store, underID := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &Session{
		UnderstandingID: underID,
		UserID:          "u1",
		JourneyType:     "market_entry",
		VersionNumber:   1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", created.Status)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.JourneyType != "market_entry" || got.UnderstandingID != underID {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.CompletedFrameworks == nil || len(got.CompletedFrameworks) != 0 {
		t.Fatalf("expected empty completed frameworks, got %v", got.CompletedFrameworks)
	}
	if got.AccumulatedContext == nil {
		t.Fatal("expected non-nil accumulated context")
	}
}

func TestGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing session, got %+v", got)
	}
}

func TestUpdateProgress(t *testing.T) {
	store, underID := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, &Session{
		UnderstandingID: underID,
		JourneyType:     "market_entry",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sess.CurrentFrameworkIndex = 2
	sess.CompletedFrameworks = []journey.FrameworkID{journey.FrameworkPestle, journey.FrameworkPorters}
	sess.AccumulatedContext["pestle"] = map[string]any{"headline": "stable macro outlook"}
	sess.Status = StatusInProgress
	if err := store.UpdateProgress(ctx, sess); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	got, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentFrameworkIndex != 2 {
		t.Fatalf("expected cursor 2, got %d", got.CurrentFrameworkIndex)
	}
	if len(got.CompletedFrameworks) != 2 || got.CompletedFrameworks[0] != journey.FrameworkPestle {
		t.Fatalf("unexpected completed frameworks: %v", got.CompletedFrameworks)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %q", got.Status)
	}
	if _, ok := got.AccumulatedContext["pestle"]; !ok {
		t.Fatal("expected pestle context to round-trip")
	}
}

func TestSetStatusAndVersion(t *testing.T) {
	store, underID := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, &Session{UnderstandingID: underID, JourneyType: "turnaround"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.SetStatus(ctx, sess.ID, StatusCompleted); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := store.SetVersionNumber(ctx, sess.ID, 3); err != nil {
		t.Fatalf("set version: %v", err)
	}

	got, _ := store.GetByID(ctx, sess.ID)
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", got.Status)
	}
	if got.VersionNumber != 3 {
		t.Fatalf("expected version 3, got %d", got.VersionNumber)
	}
}

func TestListByUnderstanding(t *testing.T) {
	store, underID := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, &Session{UnderstandingID: underID, JourneyType: "market_entry"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	sessions, err := store.ListByUnderstanding(ctx, underID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
}

func TestCompletedHelper(t *testing.T) {
	s := &Session{CompletedFrameworks: []journey.FrameworkID{journey.FrameworkSwot}}
	if !s.Completed(journey.FrameworkSwot) {
		t.Fatal("expected swot to be completed")
	}
	if s.Completed(journey.FrameworkBMC) {
		t.Fatal("did not expect bmc to be completed")
	}
}
