package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stratpilot/stratpilot/internal/analysis"
)

// handleListJourneys returns the journey catalog.
func (s *Server) handleListJourneys(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs := s.journeys.All()
	raw, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode journeys: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// handleGetSession returns one session's state.
func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load session: %v", err)), nil
	}
	if sess == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no session found with id %q", sessionID)), nil
	}

	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode session: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// handleGetAnalysis returns stored framework results.
func (s *Server) handleGetAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, result := s.resolveVersion(ctx, request)
	if result != nil {
		return result, nil
	}

	data := any(v.AnalysisData)
	if fw := request.GetString("framework", ""); fw != "" {
		entry, ok := v.AnalysisData[fw]
		if !ok {
			return mcp.NewToolResultText(fmt.Sprintf("No %s result stored in version %d yet.", fw, v.VersionNumber)), nil
		}
		data = entry
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode analysis: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// handleGetDecisions returns the synthesized decision set.
func (s *Server) handleGetDecisions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, result := s.resolveVersion(ctx, request)
	if result != nil {
		return result, nil
	}

	if v.DecisionsData == nil {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No decisions synthesized for version %d yet. Execute the journey first.", v.VersionNumber)), nil
	}

	raw, err := json.MarshalIndent(v.DecisionsData, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode decisions: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// resolveVersion loads the analysis version addressed by a request. The
// second return value is non-nil when resolution failed and carries the
// error result to hand back.
func (s *Server) resolveVersion(ctx context.Context, request mcp.CallToolRequest) (*analysis.Version, *mcp.CallToolResult) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return nil, mcp.NewToolResultError("missing required parameter: session_id")
	}

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("load session: %v", err))
	}
	if sess == nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("no session found with id %q", sessionID))
	}

	number := request.GetInt("version_number", sess.VersionNumber)
	if number <= 0 {
		number = 1
	}

	v, err := s.versions.GetVersion(ctx, sessionID, number)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("load version: %v", err))
	}
	if v == nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("no version %d for session %q", number, sessionID))
	}
	return v, nil
}
