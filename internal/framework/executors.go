package framework

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stratpilot/stratpilot/internal/journey"
	"github.com/stratpilot/stratpilot/internal/reasoning"
)

// llmExecutor is the shared machinery for reasoning-backed frameworks: it
// builds the conversation from the strategic context, calls the reasoning
// service in JSON mode, and parses the structured output.
type llmExecutor struct {
	id          journey.FrameworkID
	interactive bool
	client      reasoning.Client
	model       string
	prompt      string
}

func (e *llmExecutor) ID() journey.FrameworkID { return e.id }
func (e *llmExecutor) Interactive() bool       { return e.interactive }

func (e *llmExecutor) Execute(ctx context.Context, fc Context) (Output, map[string]any, error) {
	resp, err := e.client.Generate(ctx, reasoning.Request{
		Model:       e.model,
		Messages:    buildMessages(e.prompt, fc),
		MaxTokens:   4096,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("reasoning call for %s: %w", e.id, err)
	}

	output, err := ParseOutput(resp.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s output: %w", e.id, err)
	}

	return output, extractSummary(output), nil
}

// buildMessages assembles the system and user messages for a framework run:
// the framework prompt, the original input, prior framework summaries, and
// any bridge enhancement for this step.
func buildMessages(prompt string, fc Context) []reasoning.Message {
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nClient business")
	if fc.BusinessName != "" {
		fmt.Fprintf(&sb, " (%s)", fc.BusinessName)
	}
	sb.WriteString(":\n")
	sb.WriteString(fc.Input)

	if len(fc.PreviousResults) > 0 {
		sb.WriteString("\n\nFindings from earlier frameworks:\n")
		for id, r := range fc.PreviousResults {
			if r.Failed() || len(r.Summary) == 0 {
				continue
			}
			if data, err := json.Marshal(r.Summary); err == nil {
				fmt.Fprintf(&sb, "- %s: %s\n", id, data)
			}
		}
	}

	if len(fc.BridgeEnhancements) > 0 {
		if data, err := json.Marshal(fc.BridgeEnhancements); err == nil {
			sb.WriteString("\nFocus areas carried forward from the previous framework:\n")
			sb.Write(data)
			sb.WriteString("\n")
		}
	}

	return []reasoning.Message{
		{Role: reasoning.RoleSystem, Content: analystSystemPrompt},
		{Role: reasoning.RoleUser, Content: sb.String()},
	}
}

// ParseOutput parses a reasoning-service JSON response into an Output map,
// stripping markdown code fences if present.
func ParseOutput(raw string) (Output, error) {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) >= 2 {
			start := 1
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			raw = strings.Join(lines[start:end], "\n")
		}
	}

	var output Output
	if err := json.Unmarshal([]byte(raw), &output); err != nil {
		return nil, fmt.Errorf("json parse: %w", err)
	}
	return output, nil
}

// extractSummary pulls the "summary" field out of an output, normalizing a
// bare string into a map.
func extractSummary(output Output) map[string]any {
	switch v := output["summary"].(type) {
	case map[string]any:
		return v
	case string:
		return map[string]any{"headline": v}
	default:
		return nil
	}
}

// NewPestleExecutor returns the macro-environment scan executor.
func NewPestleExecutor(client reasoning.Client, model string) Executor {
	return &llmExecutor{id: journey.FrameworkPestle, client: client, model: model, prompt: pestlePrompt}
}

// NewPortersExecutor returns the competitive-forces scan executor.
func NewPortersExecutor(client reasoning.Client, model string) Executor {
	return &llmExecutor{id: journey.FrameworkPorters, client: client, model: model, prompt: portersPrompt}
}

// NewSwotExecutor returns the strengths/weaknesses scan executor.
func NewSwotExecutor(client reasoning.Client, model string) Executor {
	return &llmExecutor{id: journey.FrameworkSwot, client: client, model: model, prompt: swotPrompt}
}

// NewBMCExecutor returns the business-model canvas executor.
func NewBMCExecutor(client reasoning.Client, model string) Executor {
	return &llmExecutor{id: journey.FrameworkBMC, client: client, model: model, prompt: bmcPrompt}
}

// NewRootCauseExecutor returns the root-cause tree executor. The tree must be
// finalized by the user, so the framework is tagged interactive and is never
// auto-executed.
func NewRootCauseExecutor(client reasoning.Client, model string) Executor {
	return &llmExecutor{id: journey.FrameworkRootCause, interactive: true, client: client, model: model, prompt: rootCausePrompt}
}

// RegisterDefaults registers all built-in framework executors.
func RegisterDefaults(r *Registry, client reasoning.Client, model string) {
	r.Register(NewPestleExecutor(client, model))
	r.Register(NewPortersExecutor(client, model))
	r.Register(NewSwotExecutor(client, model))
	r.Register(NewBMCExecutor(client, model))
	r.Register(NewRootCauseExecutor(client, model))
}
