package stream

import (
	"log"
	"sync"
	"time"
)

// Streamer is an in-process broker fanning per-session events out to any
// number of subscribers. Slow subscribers lose events rather than blocking
// the execution that produces them.
type Streamer struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewStreamer() *Streamer {
	return &Streamer{subs: map[string]map[chan Event]struct{}{}}
}

// Subscribe registers a listener for one session's events. The returned
// cancel function must be called when the listener goes away.
func (s *Streamer) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, 64)

	s.mu.Lock()
	if s.subs[sessionID] == nil {
		s.subs[sessionID] = map[chan Event]struct{}{}
	}
	s.subs[sessionID][ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if set, ok := s.subs[sessionID]; ok {
			if _, live := set[ch]; live {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(s.subs, sessionID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the session. Full
// subscriber buffers drop the event.
func (s *Streamer) Publish(sessionID string, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs[sessionID] {
		select {
		case ch <- e:
		default:
			log.Printf("stream: dropping %s event for slow subscriber on session %s", e.Type, sessionID)
		}
	}
}

// SessionPublisher returns a Publisher bound to one session id.
func (s *Streamer) SessionPublisher(sessionID string) Publisher {
	return PublisherFunc(func(e Event) { s.Publish(sessionID, e) })
}

// SubscriberCount reports how many listeners a session currently has.
func (s *Streamer) SubscriberCount(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs[sessionID])
}
