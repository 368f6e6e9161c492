package program

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/stratpilot/stratpilot/internal/analysis"
	"github.com/stratpilot/stratpilot/internal/reasoning"
)

const generatorPrompt = `You are a program director turning a strategic analysis into an execution program.
Given the analyses and the decisions the business selected, respond with JSON only:
{
  "name": "program name",
  "objective": "one sentence objective",
  "workstreams": [
    {"id": "ws_slug", "title": "workstream title", "description": "scope",
     "milestones": [{"title": "milestone", "target_month": 3}]}
  ],
  "timeline": {"duration_months": 12, "phases": [{"name": "phase", "start_month": 1, "end_month": 3}]},
  "resources": [{"role": "role name", "allocation": "full-time or fractional"}],
  "risks": [{"description": "risk", "mitigation": "mitigation"}],
  "financials": {"investment_estimate": "range", "payback_expectation": "description"}
}
Ground every workstream in a selected decision or a concrete analysis finding.`

// Generator turns a finished analysis version into an execution program. Like
// decision synthesis, generation never fails outright: a broken reasoning
// call degrades to a deterministic skeleton derived from the decision set.
type Generator struct {
	client reasoning.Client
	model  string
}

func NewGenerator(client reasoning.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

func (g *Generator) Generate(ctx context.Context, input string, v *analysis.Version) map[string]any {
	prog, err := g.generate(ctx, input, v)
	if err != nil {
		log.Printf("program: generation failed, using fallback: %v", err)
		return FallbackProgram(v)
	}
	return prog
}

func (g *Generator) generate(ctx context.Context, input string, v *analysis.Version) (map[string]any, error) {
	if g.client == nil {
		return nil, fmt.Errorf("no reasoning client configured")
	}

	payload := map[string]any{
		"analysis":           v.AnalysisData,
		"decisions":          v.DecisionsData,
		"selected_decisions": v.SelectedDecisions,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis payload: %w", err)
	}

	resp, err := g.client.Generate(ctx, reasoning.Request{
		Model: g.model,
		Messages: []reasoning.Message{
			{Role: reasoning.RoleSystem, Content: generatorPrompt},
			{Role: reasoning.RoleUser, Content: "Business context:\n" + input + "\n\nAnalysis and decisions:\n" + string(raw)},
		},
		MaxTokens:   4096,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("generation call: %w", err)
	}

	content := strings.TrimSpace(resp.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var prog map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &prog); err != nil {
		return nil, fmt.Errorf("decode program output: %w", err)
	}
	if _, ok := prog["workstreams"].([]any); !ok {
		return nil, fmt.Errorf("program output missing workstreams")
	}
	return prog, nil
}

// FallbackProgram builds a minimal but structurally complete program from the
// stored decision set so conversion always yields something actionable.
func FallbackProgram(v *analysis.Version) map[string]any {
	workstreams := []any{}
	if v != nil && v.DecisionsData != nil {
		if points, ok := v.DecisionsData["decision_points"].([]any); ok {
			for i, raw := range points {
				dp, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				title, _ := dp["title"].(string)
				if title == "" {
					title, _ = dp["question"].(string)
				}
				workstreams = append(workstreams, map[string]any{
					"id":          fmt.Sprintf("ws_%d", i+1),
					"title":       title,
					"description": "Execute the decision reached during analysis review.",
					"milestones": []any{
						map[string]any{"title": "Confirm approach and owners", "target_month": 1},
						map[string]any{"title": "First deliverable", "target_month": 3},
					},
				})
			}
		}
	}
	if len(workstreams) == 0 {
		workstreams = append(workstreams, map[string]any{
			"id":          "ws_1",
			"title":       "Review analysis and confirm direction",
			"description": "Walk through the framework findings and set priorities.",
			"milestones": []any{
				map[string]any{"title": "Findings review complete", "target_month": 1},
			},
		})
	}

	return map[string]any{
		"name":        "Execution program",
		"objective":   "Act on the decisions reached in the strategic analysis.",
		"fallback":    true,
		"workstreams": workstreams,
		"timeline": map[string]any{
			"duration_months": 12,
			"phases": []any{
				map[string]any{"name": "Mobilize", "start_month": 1, "end_month": 3},
				map[string]any{"name": "Execute", "start_month": 4, "end_month": 10},
				map[string]any{"name": "Review", "start_month": 11, "end_month": 12},
			},
		},
		"resources": []any{
			map[string]any{"role": "Program lead", "allocation": "fractional"},
		},
		"risks": []any{
			map[string]any{"description": "Program generated without reasoning support", "mitigation": "Review and refine workstreams manually"},
		},
		"financials": map[string]any{
			"investment_estimate": "to be estimated",
			"payback_expectation": "to be estimated",
		},
	}
}
