package stream

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestChannelWritesNDJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	ch, err := NewChannel(rec, 0)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	defer ch.Close()

	ch.Publish(Event{Type: EventProgress, Framework: "pestle", Progress: 25})
	ch.Publish(Event{Type: EventComplete, Progress: 100})

	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Fatalf("unexpected content type %q", ct)
	}

	scanner := bufio.NewScanner(rec.Body)
	var lines []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if first.Type != EventProgress || first.Framework != "pestle" {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if first.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be stamped")
	}
}

func TestChannelAbsorbsAfterTerminal(t *testing.T) {
	rec := httptest.NewRecorder()
	ch, err := NewChannel(rec, 0)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	defer ch.Close()

	ch.Publish(Event{Type: EventError, Message: "reasoning provider unreachable"})
	ch.Publish(Event{Type: EventProgress, Progress: 50})
	ch.Publish(Event{Type: EventComplete})

	lines := strings.Count(strings.TrimSpace(rec.Body.String()), "\n") + 1
	if lines != 1 {
		t.Fatalf("expected exactly one line after terminal event, got %d", lines)
	}
}

func TestChannelAbsorbsAfterClose(t *testing.T) {
	rec := httptest.NewRecorder()
	ch, err := NewChannel(rec, 0)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}

	ch.Close()
	ch.Publish(Event{Type: EventProgress})
	if strings.TrimSpace(rec.Body.String()) != "" {
		t.Fatalf("expected no output after close, got %q", rec.Body.String())
	}
}

func TestChannelKeepalive(t *testing.T) {
	rec := httptest.NewRecorder()
	ch, err := NewChannel(rec, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	defer ch.Close()

	time.Sleep(70 * time.Millisecond)
	if !strings.Contains(rec.Body.String(), ": keepalive") {
		t.Fatal("expected keepalive comment lines")
	}
}

// brokenWriter simulates a client that disconnects after n successful writes.
type brokenWriter struct {
	httptest.ResponseRecorder
	remaining int
}

func (w *brokenWriter) Write(p []byte) (int, error) {
	if w.remaining <= 0 {
		return 0, errors.New("broken pipe")
	}
	w.remaining--
	return w.ResponseRecorder.Write(p)
}

func (w *brokenWriter) Flush() {}

func TestChannelStopsHeartbeatOnDisconnect(t *testing.T) {
	w := &brokenWriter{ResponseRecorder: *httptest.NewRecorder(), remaining: 1}
	ch, err := NewChannel(w, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	defer ch.Close()

	ch.Publish(Event{Type: EventProgress, Progress: 50})
	ch.Publish(Event{Type: EventProgress, Progress: 66})

	select {
	case <-ch.stop:
	case <-time.After(time.Second):
		t.Fatal("heartbeat not cancelled after the write failure")
	}
}

func TestChannelStopsHeartbeatAfterTerminal(t *testing.T) {
	rec := httptest.NewRecorder()
	ch, err := NewChannel(rec, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	defer ch.Close()

	ch.Publish(Event{Type: EventComplete, Progress: 100})

	select {
	case <-ch.stop:
	case <-time.After(time.Second):
		t.Fatal("heartbeat not cancelled after the terminal event")
	}
}

func TestStreamerFanOut(t *testing.T) {
	s := NewStreamer()

	ch1, cancel1 := s.Subscribe("sess1")
	ch2, cancel2 := s.Subscribe("sess1")
	other, cancelOther := s.Subscribe("sess2")
	defer cancel1()
	defer cancel2()
	defer cancelOther()

	s.Publish("sess1", Event{Type: EventProgress, Progress: 50})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Type != EventProgress {
				t.Fatalf("unexpected event %+v", e)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}

	select {
	case e := <-other:
		t.Fatalf("sess2 subscriber received sess1 event: %+v", e)
	default:
	}
}

func TestStreamerCancelClosesChannel(t *testing.T) {
	s := NewStreamer()
	ch, cancel := s.Subscribe("sess1")
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}
	if n := s.SubscriberCount("sess1"); n != 0 {
		t.Fatalf("expected 0 subscribers, got %d", n)
	}

	// Publishing with no subscribers must not panic.
	s.Publish("sess1", Event{Type: EventComplete})
}

func TestStreamerDropsWhenSubscriberFull(t *testing.T) {
	s := NewStreamer()
	_, cancel := s.Subscribe("sess1")
	defer cancel()

	// Buffer is 64; publishing more must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			s.Publish("sess1", Event{Type: EventDebug})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestMultiPublisher(t *testing.T) {
	var a, b []Event
	multi := Multi(
		PublisherFunc(func(e Event) { a = append(a, e) }),
		PublisherFunc(func(e Event) { b = append(b, e) }),
	)
	multi.Publish(Event{Type: EventQuery})
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected both publishers to receive, got %d and %d", len(a), len(b))
	}
}

func TestTerminalClassification(t *testing.T) {
	if !(Event{Type: EventComplete}).Terminal() {
		t.Fatal("complete should be terminal")
	}
	if !(Event{Type: EventError}).Terminal() {
		t.Fatal("error should be terminal")
	}
	if (Event{Type: EventProgress}).Terminal() {
		t.Fatal("progress should not be terminal")
	}
}
