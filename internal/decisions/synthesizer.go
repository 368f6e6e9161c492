package decisions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/stratpilot/stratpilot/internal/reasoning"
)

// Option is one way to resolve a decision point.
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Tradeoffs   string `json:"tradeoffs,omitempty"`
}

// DecisionPoint is one strategic choice surfaced by the analysis.
type DecisionPoint struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Question  string   `json:"question"`
	Rationale string   `json:"rationale,omitempty"`
	Options   []Option `json:"options"`
}

// Set is the full synthesized output for one analysis version.
type Set struct {
	DecisionPoints []DecisionPoint `json:"decision_points"`
	Summary        string          `json:"summary,omitempty"`
	Fallback       bool            `json:"fallback,omitempty"`
}

// Map converts the set to the generic shape stored in analysis versions.
func (s *Set) Map() map[string]any {
	raw, err := json.Marshal(s)
	if err != nil {
		return map[string]any{"decision_points": []any{}}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"decision_points": []any{}}
	}
	return m
}

const synthesisPrompt = `You are a strategy consultant closing out an analysis engagement.
Given the completed framework analyses below, identify the key strategic decisions
the business now faces. Respond with JSON only, in this exact shape:
{
  "summary": "one paragraph tying the analyses together",
  "decision_points": [
    {
      "id": "dp_short_slug",
      "title": "short decision title",
      "question": "the question the business must answer",
      "rationale": "which analysis findings raise this decision",
      "options": [
        {"id": "opt_slug", "label": "option label", "description": "what it entails", "tradeoffs": "costs and risks"}
      ]
    }
  ]
}
Surface 2 to 5 decision points. Every decision point needs at least 2 options.
Skip frameworks whose results carry an error flag.`

// Synthesizer turns accumulated framework results into a decision set. It
// never returns an error: any failure in the reasoning call or its output
// degrades to a minimal fallback set so journey completion is unconditional.
type Synthesizer struct {
	client reasoning.Client
	model  string
}

func NewSynthesizer(client reasoning.Client, model string) *Synthesizer {
	return &Synthesizer{client: client, model: model}
}

// Synthesize builds the decision set for the given analysis data. The input
// maps framework ids to their result envelopes.
func (s *Synthesizer) Synthesize(ctx context.Context, input string, analysisData map[string]any) *Set {
	set, err := s.generate(ctx, input, analysisData)
	if err != nil {
		log.Printf("decisions: synthesis failed, using fallback: %v", err)
		return FallbackSet()
	}
	return set
}

func (s *Synthesizer) generate(ctx context.Context, input string, analysisData map[string]any) (*Set, error) {
	if s.client == nil {
		return nil, fmt.Errorf("no reasoning client configured")
	}

	analyses, err := json.Marshal(analysisData)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis data: %w", err)
	}

	var user strings.Builder
	user.WriteString("Business context:\n")
	user.WriteString(input)
	user.WriteString("\n\nCompleted framework analyses:\n")
	user.Write(analyses)

	resp, err := s.client.Generate(ctx, reasoning.Request{
		Model: s.model,
		Messages: []reasoning.Message{
			{Role: reasoning.RoleSystem, Content: synthesisPrompt},
			{Role: reasoning.RoleUser, Content: user.String()},
		},
		MaxTokens:   4096,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis call: %w", err)
	}

	var set Set
	content := strings.TrimSpace(resp.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &set); err != nil {
		return nil, fmt.Errorf("decode synthesis output: %w", err)
	}
	if err := validate(&set); err != nil {
		return nil, fmt.Errorf("invalid synthesis output: %w", err)
	}
	return &set, nil
}

// validate enforces the structural floor: at least one decision point, each
// with an id, a question and at least two options.
func validate(set *Set) error {
	if len(set.DecisionPoints) == 0 {
		return fmt.Errorf("no decision points")
	}
	for i, dp := range set.DecisionPoints {
		if dp.ID == "" {
			return fmt.Errorf("decision point %d missing id", i)
		}
		if dp.Question == "" && dp.Title == "" {
			return fmt.Errorf("decision point %q missing question", dp.ID)
		}
		if len(dp.Options) < 2 {
			return fmt.Errorf("decision point %q needs at least 2 options", dp.ID)
		}
	}
	return nil
}

// FallbackSet is the minimal decision set used when synthesis cannot produce
// a valid one. It always contains exactly one reviewable decision point.
func FallbackSet() *Set {
	return &Set{
		Fallback: true,
		Summary:  "Automated synthesis was unavailable. Review the framework analyses directly.",
		DecisionPoints: []DecisionPoint{
			{
				ID:       "dp_review_analysis",
				Title:    "Review analysis results",
				Question: "Which findings from the completed analyses should drive your next move?",
				Options: []Option{
					{ID: "opt_review_now", Label: "Walk through each framework's findings now"},
					{ID: "opt_rerun_later", Label: "Re-run the analysis once the reasoning service recovers"},
				},
			},
		},
	}
}
