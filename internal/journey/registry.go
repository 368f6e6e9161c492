package journey

import (
	"sort"
	"strings"
)

// Registry is the static catalog of journey definitions. It is a pure lookup
// table with no state beyond its construction-time contents.
type Registry struct {
	journeys map[string]Definition
}

// NewRegistry creates a registry with the built-in journey catalog.
func NewRegistry() *Registry {
	return &Registry{journeys: builtinJourneys()}
}

// NewRegistryWith creates a registry from an explicit set of definitions.
// Used by tests and by callers that load a custom catalog.
func NewRegistryWith(defs []Definition) *Registry {
	m := make(map[string]Definition, len(defs))
	for _, d := range defs {
		m[d.Type] = d
	}
	return &Registry{journeys: m}
}

// Get returns the definition for the given journey type, or nil when unknown.
// The returned definition is a copy; the catalog itself is immutable.
func (r *Registry) Get(journeyType string) *Definition {
	d, ok := r.journeys[journeyType]
	if !ok {
		return nil
	}
	cp := d
	cp.Frameworks = append([]FrameworkID(nil), d.Frameworks...)
	cp.PageSequence = append([]string(nil), d.PageSequence...)
	return &cp
}

// All returns every registered journey, ordered by type.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.journeys))
	for _, d := range r.journeys {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// builtinJourneys is the catalog shipped with stratpilot.
func builtinJourneys() map[string]Definition {
	defs := []Definition{
		{
			Type:       "market_entry",
			Title:      "Market Entry",
			Frameworks: []FrameworkID{FrameworkPestle, FrameworkPorters, FrameworkSwot},
			PageSequence: []string{
				"/journeys/market_entry/{sessionId}/intake",
				"/journeys/market_entry/{sessionId}/pestle",
				"/journeys/market_entry/{sessionId}/porters",
				"/journeys/market_entry/{sessionId}/swot",
				"/journeys/market_entry/{sessionId}/research",
				"/journeys/market_entry/{sessionId}/decisions",
				"/journeys/market_entry/{sessionId}/program",
			},
			DefaultReadiness: Readiness{MinReferences: 3, MinEntities: 5},
			Available:        true,
		},
		{
			Type:       "business_model",
			Title:      "Business Model Design",
			Frameworks: []FrameworkID{FrameworkPestle, FrameworkSwot, FrameworkBMC},
			PageSequence: []string{
				"/journeys/business_model/{sessionId}/intake",
				"/journeys/business_model/{sessionId}/pestle",
				"/journeys/business_model/{sessionId}/swot",
				"/journeys/business_model/{sessionId}/canvas",
				"/journeys/business_model/{sessionId}/research",
				"/journeys/business_model/{sessionId}/decisions",
			},
			DefaultReadiness: Readiness{MinReferences: 3, MinEntities: 5},
			Available:        true,
		},
		{
			Type:       "turnaround",
			Title:      "Turnaround",
			Frameworks: []FrameworkID{FrameworkRootCause, FrameworkPestle, FrameworkSwot, FrameworkBMC},
			PageSequence: []string{
				"/journeys/turnaround/{sessionId}/intake",
				"/journeys/turnaround/{sessionId}/root-cause",
				"/journeys/turnaround/{sessionId}/pestle",
				"/journeys/turnaround/{sessionId}/swot",
				"/journeys/turnaround/{sessionId}/canvas",
				"/journeys/turnaround/{sessionId}/analysis",
				"/journeys/turnaround/{sessionId}/decisions",
			},
			DefaultReadiness: Readiness{MinReferences: 5, MinEntities: 8},
			Available:        true,
		},
	}

	m := make(map[string]Definition, len(defs))
	for _, d := range defs {
		m[d.Type] = d
	}
	return m
}

// NextPageAfterResearch returns the page route that follows the journey's
// research/analysis review page. When no research page exists, the page
// containing "decisions" is returned; failing that, the empty string.
func NextPageAfterResearch(d *Definition) string {
	for i, page := range d.PageSequence {
		if strings.Contains(page, "research") || strings.Contains(page, "analysis") {
			if i+1 < len(d.PageSequence) {
				return d.PageSequence[i+1]
			}
		}
	}
	for _, page := range d.PageSequence {
		if strings.Contains(page, "decisions") {
			return page
		}
	}
	return ""
}

// BuildPageURL substitutes the session identifier into a page template.
func BuildPageURL(template, sessionID string) string {
	return strings.ReplaceAll(template, "{sessionId}", sessionID)
}

// FirstPageURL returns the first page of the journey for the given session.
func FirstPageURL(d *Definition, sessionID string) string {
	if len(d.PageSequence) == 0 {
		return ""
	}
	return BuildPageURL(d.PageSequence[0], sessionID)
}
