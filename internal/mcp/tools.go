package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listJourneysTool defines the list_journeys MCP tool.
var listJourneysTool = mcp.NewTool("list_journeys",
	mcp.WithDescription("List the available strategic journeys with their framework sequences."),
)

// getSessionTool defines the get_session MCP tool.
var getSessionTool = mcp.NewTool("get_session",
	mcp.WithDescription("Get the state of a journey session: status, completed frameworks and execution cursor."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Journey session identifier"),
	),
)

// getAnalysisTool defines the get_analysis MCP tool.
var getAnalysisTool = mcp.NewTool("get_analysis",
	mcp.WithDescription("Get the framework analysis results stored for a session's analysis version."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Journey session identifier"),
	),
	mcp.WithNumber("version_number",
		mcp.Description("Analysis version number (defaults to the session's current version)"),
	),
	mcp.WithString("framework",
		mcp.Description("Return only this framework's result"),
		mcp.Enum("pestle", "porters", "swot", "bmc", "root_cause"),
	),
)

// getDecisionsTool defines the get_decisions MCP tool.
var getDecisionsTool = mcp.NewTool("get_decisions",
	mcp.WithDescription("Get the synthesized decision points for a session's analysis version."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Journey session identifier"),
	),
	mcp.WithNumber("version_number",
		mcp.Description("Analysis version number (defaults to the session's current version)"),
	),
)
