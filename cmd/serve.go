package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stratpilot/stratpilot/internal/analysis"
	"github.com/stratpilot/stratpilot/internal/orchestrator"
	"github.com/stratpilot/stratpilot/internal/program"
	"github.com/stratpilot/stratpilot/internal/references"
	"github.com/stratpilot/stratpilot/internal/server"
	"github.com/stratpilot/stratpilot/internal/stream"
	"github.com/stratpilot/stratpilot/internal/understanding"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stratpilot HTTP server",
	Long:  `Starts the journey orchestration server with the REST API, NDJSON execution streams, and websocket progress subscriptions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.close()

		if servePort > 0 {
			deps.cfg.Port = servePort
		}

		probeReasoning(deps)

		srv := server.New(deps.cfg, deps.database, deps.frameworks, deps.journeys)
		registerAllRoutes(srv, deps)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "stratpilot server v%s starting on port %d\n", Version, deps.cfg.Port)
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", deps.cfg.Provider, deps.cfg.Model)
		fmt.Fprintf(os.Stderr, "  Journeys: %d\n", len(deps.journeys.All()))

		return srv.Start()
	},
}

// registerAllRoutes wires up all feature routes.
func registerAllRoutes(srv *server.Server, deps *appDeps) {
	r := srv.Router()
	streamer := stream.NewStreamer()
	heartbeat := time.Duration(deps.cfg.HeartbeatSec) * time.Second

	understanding.RegisterRoutes(r, deps.understandings)
	analysis.RegisterRoutes(r, deps.versions)
	orchestrator.RegisterRoutes(r, deps.orch, streamer, heartbeat)
	references.RegisterRoutes(r, deps.citations)

	generator := program.NewGenerator(deps.client, deps.cfg.Model)
	jobTimeout := time.Duration(deps.cfg.Timeouts.SynthesisSec) * time.Second
	manager := program.NewManager(generator, deps.versions, deps.sessions, deps.understandings, jobTimeout)
	program.RegisterRoutes(r, manager)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
