package progress

import (
	"testing"

	"github.com/stratpilot/stratpilot/internal/stream"
)

type fakeReporter struct {
	started  bool
	finished bool
	updates  []int
	messages []string
}

func (f *fakeReporter) Start(total int) { f.started = true }

func (f *fakeReporter) Update(current int, message string) {
	f.updates = append(f.updates, current)
	f.messages = append(f.messages, message)
}

func (f *fakeReporter) Finish() { f.finished = true }

func TestPublisherDrivesReporter(t *testing.T) {
	r := &fakeReporter{}
	pub := Publisher(r)

	pub.Publish(stream.Event{Type: stream.EventQuery, Message: "running pestle analysis", Progress: 0})
	pub.Publish(stream.Event{Type: stream.EventProgress, Message: "pestle analysis complete", Progress: 50})
	pub.Publish(stream.Event{Type: stream.EventComplete, Message: "journey complete", Progress: 100})

	if !r.started {
		t.Fatal("reporter never started")
	}
	if !r.finished {
		t.Fatal("reporter never finished")
	}
	if len(r.updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(r.updates))
	}
	if r.updates[1] != 50 || r.updates[2] != 100 {
		t.Fatalf("unexpected update values: %v", r.updates)
	}
}

func TestPublisherMarksErrors(t *testing.T) {
	r := &fakeReporter{}
	pub := Publisher(r)

	pub.Publish(stream.Event{Type: stream.EventError, Message: "session not found"})

	if !r.finished {
		t.Fatal("error event should finish the reporter")
	}
	if len(r.messages) != 1 || r.messages[0] != "error: session not found" {
		t.Fatalf("unexpected messages: %v", r.messages)
	}
}

func TestPublisherIgnoresDebug(t *testing.T) {
	r := &fakeReporter{}
	pub := Publisher(r)

	pub.Publish(stream.Event{Type: stream.EventDebug, Message: "bridge applied"})
	if len(r.updates) != 0 {
		t.Fatalf("debug events should not update the bar, got %v", r.updates)
	}
}
