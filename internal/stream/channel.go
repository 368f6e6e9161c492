package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Channel streams events to one HTTP client as newline-delimited JSON.
// Heartbeat comment lines (": keepalive") keep idle proxies from cutting the
// connection between frameworks. Once the client disconnects or a terminal
// event has been written, further publishes are absorbed silently so the
// producing execution can finish undisturbed.
type Channel struct {
	mu        sync.Mutex
	w         http.ResponseWriter
	flusher   http.Flusher
	closed    bool
	terminal  bool
	heartbeat time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewChannel prepares w for NDJSON streaming and starts the heartbeat. The
// caller must call Close when the request handler returns. A heartbeat of
// zero disables keepalives.
func NewChannel(w http.ResponseWriter, heartbeat time.Duration) (*Channel, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	c := &Channel{
		w:         w,
		flusher:   flusher,
		heartbeat: heartbeat,
		stop:      make(chan struct{}),
	}
	if heartbeat > 0 {
		go c.keepalive()
	}
	return c, nil
}

func (c *Channel) keepalive() {
	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.closed || c.terminal {
				c.mu.Unlock()
				c.signalStop()
				return
			}
			if _, err := fmt.Fprint(c.w, ": keepalive\n"); err != nil {
				c.closed = true
				c.mu.Unlock()
				c.signalStop()
				return
			}
			c.flusher.Flush()
			c.mu.Unlock()
		}
	}
}

// Publish writes one event as a JSON line. After a terminal event or a write
// failure the channel goes quiet and drops everything.
func (c *Channel) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.terminal {
		return
	}

	line, err := json.Marshal(e)
	if err != nil {
		log.Printf("stream: marshal event: %v", err)
		return
	}
	if _, err := c.w.Write(append(line, '\n')); err != nil {
		c.closed = true
		c.signalStop()
		return
	}
	c.flusher.Flush()

	if e.Terminal() {
		c.terminal = true
		c.signalStop()
	}
}

// signalStop cancels the heartbeat timer. Safe under the channel mutex and
// safe to call more than once.
func (c *Channel) signalStop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Close stops the heartbeat. Safe to call more than once.
func (c *Channel) Close() {
	c.signalStop()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
