package stream

import "time"

// EventType classifies a progress event on the execution stream.
type EventType string

const (
	EventContext   EventType = "context"
	EventQuery     EventType = "query"
	EventSynthesis EventType = "synthesis"
	EventProgress  EventType = "progress"
	EventComplete  EventType = "complete"
	EventError     EventType = "error"
	EventDebug     EventType = "debug"
)

// Event is one line on the progress stream. Progress is a percent estimate in
// [0, 100] and never decreases within a single execution.
type Event struct {
	Type      EventType      `json:"type"`
	Framework string         `json:"framework,omitempty"`
	Message   string         `json:"message,omitempty"`
	Progress  float64        `json:"progress,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Terminal reports whether this event ends the stream. Every execution emits
// exactly one terminal event.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// Publisher receives progress events. Implementations must tolerate publishes
// after the consumer is gone; a dead consumer never propagates an error back
// into the execution.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

// Discard drops every event. Used when a journey runs without an observer.
var Discard Publisher = PublisherFunc(func(Event) {})

// Multi fans one publish out to several publishers.
func Multi(pubs ...Publisher) Publisher {
	return PublisherFunc(func(e Event) {
		for _, p := range pubs {
			p.Publish(e)
		}
	})
}
