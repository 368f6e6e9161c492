package journey

// FrameworkID identifies one pluggable strategic-analysis step.
type FrameworkID string

const (
	FrameworkPestle    FrameworkID = "pestle"
	FrameworkPorters   FrameworkID = "porters"
	FrameworkSwot      FrameworkID = "swot"
	FrameworkBMC       FrameworkID = "bmc"
	FrameworkRootCause FrameworkID = "root_cause"
)

// Readiness holds the thresholds used to decide whether a journey has enough
// supporting evidence to run unattended.
type Readiness struct {
	MinReferences int `json:"min_references"`
	MinEntities   int `json:"min_entities"`
}

// Definition describes one journey type: the ordered frameworks it runs, the
// page routes the user is walked through, and its default readiness. Loaded
// once at startup and never mutated.
type Definition struct {
	Type             string        `json:"type"`
	Title            string        `json:"title"`
	Frameworks       []FrameworkID `json:"frameworks"`
	PageSequence     []string      `json:"page_sequence"`
	DefaultReadiness Readiness     `json:"default_readiness"`
	Available        bool          `json:"available"`
}
