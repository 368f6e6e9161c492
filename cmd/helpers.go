package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stratpilot/stratpilot/internal/analysis"
	"github.com/stratpilot/stratpilot/internal/bridge"
	"github.com/stratpilot/stratpilot/internal/config"
	"github.com/stratpilot/stratpilot/internal/db"
	"github.com/stratpilot/stratpilot/internal/decisions"
	"github.com/stratpilot/stratpilot/internal/framework"
	"github.com/stratpilot/stratpilot/internal/journey"
	"github.com/stratpilot/stratpilot/internal/orchestrator"
	"github.com/stratpilot/stratpilot/internal/reasoning"
	"github.com/stratpilot/stratpilot/internal/references"
	"github.com/stratpilot/stratpilot/internal/session"
	"github.com/stratpilot/stratpilot/internal/understanding"
)

// appDeps holds the wired application graph shared by the serve, run and mcp
// commands.
type appDeps struct {
	cfg            *config.Config
	database       *db.DB
	client         reasoning.Client
	journeys       *journey.Registry
	frameworks     *framework.Registry
	bridges        *bridge.Registry
	sessions       *session.Store
	versions       *analysis.Store
	understandings *understanding.Store
	citations      *references.Sink
	orch           *orchestrator.Orchestrator
}

// buildDeps loads configuration and wires every component.
func buildDeps() (*appDeps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client, err := reasoning.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating reasoning client: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "stratpilot.db")
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	frameworks := framework.NewRegistry()
	framework.RegisterDefaults(frameworks, client, cfg.Model)

	bridges := bridge.NewRegistry()
	bridge.RegisterDefaults(bridges)

	d := &appDeps{
		cfg:            cfg,
		database:       database,
		client:         client,
		journeys:       journey.NewRegistry(),
		frameworks:     frameworks,
		bridges:        bridges,
		sessions:       session.NewStore(database),
		versions:       analysis.NewStore(database),
		understandings: understanding.NewStore(database),
		citations:      references.NewSink(database),
	}
	d.orch = orchestrator.New(orchestrator.Deps{
		Config:         cfg,
		Journeys:       d.journeys,
		Frameworks:     frameworks,
		Bridges:        bridges,
		Sessions:       d.sessions,
		Versions:       d.versions,
		Understandings: d.understandings,
		Citations:      d.citations,
		Synthesizer:    decisions.NewSynthesizer(client, cfg.Model),
	})
	return d, nil
}

func (d *appDeps) close() {
	d.database.Close()
}

// probeReasoning makes one small call against the configured provider so a
// bad key or unreachable endpoint surfaces at startup instead of mid-journey.
// Failures only warn.
func probeReasoning(d *appDeps) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := d.client.Generate(ctx, reasoning.Request{
		Model:     d.cfg.Model,
		Messages:  []reasoning.Message{{Role: reasoning.RoleUser, Content: "Reply with the single word: ok"}},
		MaxTokens: 8,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: reasoning provider %s is not responding: %v\n", d.client.Name(), err)
		fmt.Fprintln(os.Stderr, "Journeys will fall back to error payloads until the provider recovers.")
	}
}
