package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/stratpilot/stratpilot/internal/analysis"
	"github.com/stratpilot/stratpilot/internal/journey"
	"github.com/stratpilot/stratpilot/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the analysis store to agent
// clients: journey definitions, session state, framework results and
// synthesized decisions.
type Server struct {
	journeys *journey.Registry
	sessions *session.Store
	versions *analysis.Store
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(journeys *journey.Registry, sessions *session.Store, versions *analysis.Store) *Server {
	s := &Server{
		journeys: journeys,
		sessions: sessions,
		versions: versions,
	}

	s.mcp = server.NewMCPServer(
		"stratpilot",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listJourneysTool, s.handleListJourneys)
	s.mcp.AddTool(getSessionTool, s.handleGetSession)
	s.mcp.AddTool(getAnalysisTool, s.handleGetAnalysis)
	s.mcp.AddTool(getDecisionsTool, s.handleGetDecisions)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
