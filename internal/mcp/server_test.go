package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stratpilot/stratpilot/internal/analysis"
	"github.com/stratpilot/stratpilot/internal/db"
	"github.com/stratpilot/stratpilot/internal/journey"
	"github.com/stratpilot/stratpilot/internal/session"
	"github.com/stratpilot/stratpilot/internal/understanding"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctx := context.Background()
	u, err := understanding.NewStore(database).Create(ctx, &understanding.Understanding{UserInput: "craft brewery"})
	if err != nil {
		t.Fatalf("seed understanding: %v", err)
	}

	sessions := session.NewStore(database)
	sess, err := sessions.Create(ctx, &session.Session{
		UnderstandingID: u.ID,
		JourneyType:     "market_entry",
		VersionNumber:   1,
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	versions := analysis.NewStore(database)
	_, err = versions.CreateVersion(ctx, &analysis.Version{
		SessionID:     sess.ID,
		VersionNumber: 1,
		AnalysisData: map[string]any{
			"pestle": map[string]any{"framework": "pestle", "output": map[string]any{"political": []any{"excise duty reform"}}},
		},
	})
	if err != nil {
		t.Fatalf("seed version: %v", err)
	}
	if err := versions.SetDecisions(ctx, sess.ID, 1, map[string]any{
		"decision_points": []any{map[string]any{"id": "dp_channel", "title": "Distribution channel"}},
	}); err != nil {
		t.Fatalf("seed decisions: %v", err)
	}

	return NewServer(journey.NewRegistry(), sessions, versions), sess.ID
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"list_journeys", listJourneysTool, "list_journeys"},
		{"get_session", getSessionTool, "get_session"},
		{"get_analysis", getAnalysisTool, "get_analysis"},
		{"get_decisions", getDecisionsTool, "get_decisions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv, _ := newTestServer(t)
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestHandleListJourneys(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleListJourneys(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "market_entry") {
		t.Errorf("expected journey catalog, got %q", text)
	}
}

func TestHandleGetAnalysis(t *testing.T) {
	srv, sessID := newTestServer(t)
	ctx := context.Background()

	t.Run("full analysis", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"session_id": sessID}

		result, err := srv.handleGetAnalysis(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(resultText(t, result), "excise duty reform") {
			t.Error("expected stored analysis content")
		}
	})

	t.Run("framework filter", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"session_id": sessID, "framework": "pestle"}

		result, err := srv.handleGetAnalysis(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
	})

	t.Run("missing framework entry", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"session_id": sessID, "framework": "swot"}

		result, err := srv.handleGetAnalysis(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatal("absent framework should be an informational text, not an error")
		}
	})

	t.Run("missing session_id", func(t *testing.T) {
		result, err := srv.handleGetAnalysis(ctx, mcp.CallToolRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing session_id")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"session_id": "nope"}

		result, err := srv.handleGetAnalysis(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown session")
		}
	})
}

func TestHandleGetDecisions(t *testing.T) {
	srv, sessID := newTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"session_id": sessID}

	result, err := srv.handleGetDecisions(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(resultText(t, result), "dp_channel") {
		t.Error("expected stored decision points")
	}
}

func TestHandleGetSession(t *testing.T) {
	srv, sessID := newTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"session_id": sessID}

	result, err := srv.handleGetSession(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(resultText(t, result), "market_entry") {
		t.Error("expected session state in response")
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var out strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			out.WriteString(tc.Text)
		}
	}
	return out.String()
}
