package reasoning

import "context"

// Client is the interface to the generative reasoning service that executes
// framework analyses and decision synthesis.
type Client interface {
	// Generate sends a generation request and returns the response.
	Generate(ctx context.Context, req Request) (*Response, error)
	// Name returns the name of the backing provider.
	Name() string
}
