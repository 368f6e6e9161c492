package reasoning

import (
	"context"
	"sync"
	"time"
)

// RateLimitedClient wraps a Client with a token bucket rate limiter.
type RateLimitedClient struct {
	client   Client
	rpm      int
	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// NewRateLimitedClient wraps the given client with a rate limiter
// that allows at most rpm requests per minute.
func NewRateLimitedClient(client Client, rpm int) Client {
	return &RateLimitedClient{
		client:   client,
		rpm:      rpm,
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimitedClient) Name() string {
	return r.client.Name()
}

func (r *RateLimitedClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.client.Generate(ctx, req)
}

func (r *RateLimitedClient) wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.lastFill)

		// Refill tokens based on elapsed time.
		refill := int(elapsed.Seconds() * float64(r.rpm) / 60.0)
		if refill > 0 {
			r.tokens += refill
			if r.tokens > r.rpm {
				r.tokens = r.rpm
			}
			r.lastFill = now
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		// Wait a short interval before retrying.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
