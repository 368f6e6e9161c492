package journey

import "testing"

func TestGetKnownJourney(t *testing.T) {
	r := NewRegistry()

	d := r.Get("market_entry")
	if d == nil {
		t.Fatal("expected market_entry definition")
	}
	if len(d.Frameworks) != 3 {
		t.Errorf("expected 3 frameworks, got %d", len(d.Frameworks))
	}
	want := []FrameworkID{FrameworkPestle, FrameworkPorters, FrameworkSwot}
	for i, f := range d.Frameworks {
		if f != want[i] {
			t.Errorf("frameworks[%d] = %q, want %q", i, f, want[i])
		}
	}
	if !d.Available {
		t.Error("expected market_entry to be available")
	}
}

func TestGetUnknownJourneyReturnsNil(t *testing.T) {
	r := NewRegistry()
	if d := r.Get("moonshot"); d != nil {
		t.Errorf("expected nil for unknown journey, got %+v", d)
	}
}

func TestAllIsOrdered(t *testing.T) {
	r := NewRegistry()
	all := r.All()
	if len(all) < 3 {
		t.Fatalf("expected at least 3 journeys, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Type >= all[i].Type {
			t.Errorf("journeys not ordered: %q before %q", all[i-1].Type, all[i].Type)
		}
	}
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	d := r.Get("market_entry")
	d.Frameworks[0] = "mutated"

	fresh := r.Get("market_entry")
	if fresh.Frameworks[0] == "mutated" {
		// Shared backing array would mean the catalog is mutable from outside.
		t.Error("registry definition was mutated through a returned copy")
	}
}

func TestNextPageAfterResearch(t *testing.T) {
	r := NewRegistry()

	d := r.Get("market_entry")
	got := NextPageAfterResearch(d)
	if got != "/journeys/market_entry/{sessionId}/decisions" {
		t.Errorf("unexpected next page: %q", got)
	}

	// turnaround uses "analysis" instead of "research".
	d = r.Get("turnaround")
	got = NextPageAfterResearch(d)
	if got != "/journeys/turnaround/{sessionId}/decisions" {
		t.Errorf("unexpected next page: %q", got)
	}
}

func TestNextPageFallbackToDecisions(t *testing.T) {
	d := &Definition{
		Type:         "custom",
		PageSequence: []string{"/c/{sessionId}/intake", "/c/{sessionId}/decisions"},
	}
	got := NextPageAfterResearch(d)
	if got != "/c/{sessionId}/decisions" {
		t.Errorf("expected decisions fallback, got %q", got)
	}
}

func TestNextPageNothingMatches(t *testing.T) {
	d := &Definition{Type: "custom", PageSequence: []string{"/c/{sessionId}/intake"}}
	if got := NextPageAfterResearch(d); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestBuildPageURL(t *testing.T) {
	got := BuildPageURL("/journeys/market_entry/{sessionId}/pestle", "abc-123")
	if got != "/journeys/market_entry/abc-123/pestle" {
		t.Errorf("unexpected URL: %q", got)
	}
}

func TestFirstPageURL(t *testing.T) {
	r := NewRegistry()
	d := r.Get("market_entry")
	got := FirstPageURL(d, "s1")
	if got != "/journeys/market_entry/s1/intake" {
		t.Errorf("unexpected first page: %q", got)
	}

	empty := &Definition{Type: "none"}
	if got := FirstPageURL(empty, "s1"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestNewRegistryWith(t *testing.T) {
	defs := []Definition{{Type: "custom", Frameworks: []FrameworkID{FrameworkSwot}, Available: true}}
	r := NewRegistryWith(defs)
	if r.Get("custom") == nil {
		t.Error("expected custom journey")
	}
	if r.Get("market_entry") != nil {
		t.Error("expected built-ins to be absent")
	}
}

func TestGetReturnsCopyIndependentOfCatalog(t *testing.T) {
	// Two lookups must not alias each other.
	r := NewRegistry()
	a := r.Get("business_model")
	b := r.Get("business_model")
	if a == b {
		t.Error("expected distinct copies per lookup")
	}
}
