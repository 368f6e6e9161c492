package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stratpilot/stratpilot/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Exposes journey definitions, session state, analysis results and decisions
to MCP-capable agent clients over stdio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.close()

		mcp.Version = Version
		srv := mcp.NewServer(deps.journeys, deps.sessions, deps.versions)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
