package bridge

import (
	"fmt"
	"log"

	"github.com/stratpilot/stratpilot/internal/framework"
	"github.com/stratpilot/stratpilot/internal/journey"
)

// Context carries the accumulated state a transform may draw on beyond the
// immediate source output.
type Context struct {
	Input        string
	PriorResults map[journey.FrameworkID]framework.Result
}

// TransformFunc converts one framework's output (plus accumulated prior
// outputs) into an enhancement consumed by the next framework's execution
// context.
type TransformFunc func(source framework.Output, bctx Context) (map[string]any, error)

// Bridge carries derived insight from one framework into the next.
type Bridge struct {
	Source    journey.FrameworkID
	Target    journey.FrameworkID
	Transform TransformFunc
}

type pair struct {
	source, target journey.FrameworkID
}

// Registry maps ordered (source, target) framework pairs to bridges.
// Frameworks are developed independently; rather than hard-wiring transition
// logic into each executor, bridges are looked up by pair and applied only
// when present. Absence of a bridge is not an error.
type Registry struct {
	bridges map[pair]*Bridge
}

// NewRegistry creates an empty bridge registry.
func NewRegistry() *Registry {
	return &Registry{bridges: make(map[pair]*Bridge)}
}

// Register adds a bridge for the given ordered pair.
func (r *Registry) Register(source, target journey.FrameworkID, fn TransformFunc) {
	r.bridges[pair{source, target}] = &Bridge{Source: source, Target: target, Transform: fn}
}

// Get returns the bridge for the ordered pair, or nil when none is registered.
func (r *Registry) Get(source, target journey.FrameworkID) *Bridge {
	return r.bridges[pair{source, target}]
}

// Apply looks up and runs the bridge for the pair. A missing bridge yields
// (nil, false). A transform failure (error or panic) is logged and yields
// (nil, false): the enhancement is simply omitted, never fatal.
func (r *Registry) Apply(source, target journey.FrameworkID, output framework.Output, bctx Context) (enhancement map[string]any, ok bool) {
	b := r.Get(source, target)
	if b == nil {
		return nil, false
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("bridge: %s->%s panic: %v", source, target, rec)
			enhancement, ok = nil, false
		}
	}()

	enh, err := b.Transform(output, bctx)
	if err != nil {
		log.Printf("bridge: %s->%s failed: %v", source, target, err)
		return nil, false
	}
	if len(enh) == 0 {
		return nil, false
	}
	return enh, true
}

// errEmptySource is returned by built-in transforms handed a failed or empty
// source output.
var errEmptySource = fmt.Errorf("source output empty or failed")
