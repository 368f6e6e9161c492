package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stratpilot/stratpilot/internal/orchestrator"
	"github.com/stratpilot/stratpilot/internal/progress"
	"github.com/stratpilot/stratpilot/internal/understanding"
)

var (
	runJourneyType string
	runInput       string
	runInputFile   string
	runForce       bool
	runJSON        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a journey end to end from the command line",
	Long: `Creates an understanding from the given business input, starts the chosen
journey, executes every framework, and prints the synthesized decisions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.TrimSpace(runInput)
		if runInputFile != "" {
			raw, err := os.ReadFile(runInputFile)
			if err != nil {
				return fmt.Errorf("reading input file: %w", err)
			}
			input = strings.TrimSpace(string(raw))
		}
		if input == "" {
			return fmt.Errorf("provide the business context via --input or --input-file")
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.close()

		ctx := context.Background()
		u, err := deps.understandings.Create(ctx, &understanding.Understanding{UserInput: input})
		if err != nil {
			return fmt.Errorf("saving understanding: %w", err)
		}

		result, err := deps.orch.StartJourney(ctx, orchestrator.StartRequest{
			UnderstandingID: u.ID,
			JourneyType:     runJourneyType,
		})
		if err != nil {
			return fmt.Errorf("starting journey: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Session %s (version %d)\n", result.Session.ID, result.Session.VersionNumber)

		pub := progress.Publisher(progress.NewReporter())
		if err := deps.orch.ExecuteJourney(ctx, result.Session.ID, orchestrator.ExecuteOptions{Force: runForce}, pub); err != nil {
			return fmt.Errorf("executing journey: %w", err)
		}

		v, err := deps.versions.GetVersion(ctx, result.Session.ID, result.Session.VersionNumber)
		if err != nil || v == nil {
			return fmt.Errorf("loading results: %w", err)
		}

		if runJSON {
			out := map[string]any{
				"session_id": result.Session.ID,
				"analysis":   v.AnalysisData,
				"decisions":  v.DecisionsData,
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		printDecisions(v.DecisionsData)
		return nil
	},
}

func printDecisions(decisionsData map[string]any) {
	if decisionsData == nil {
		fmt.Println("No decisions were synthesized.")
		return
	}
	if summary, ok := decisionsData["summary"].(string); ok && summary != "" {
		fmt.Println(summary)
		fmt.Println()
	}
	points, _ := decisionsData["decision_points"].([]any)
	for i, raw := range points {
		dp, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		title, _ := dp["title"].(string)
		question, _ := dp["question"].(string)
		fmt.Printf("%d. %s\n", i+1, title)
		if question != "" {
			fmt.Printf("   %s\n", question)
		}
		options, _ := dp["options"].([]any)
		for _, rawOpt := range options {
			opt, ok := rawOpt.(map[string]any)
			if !ok {
				continue
			}
			label, _ := opt["label"].(string)
			fmt.Printf("   - %s\n", label)
		}
	}
}

func init() {
	runCmd.Flags().StringVar(&runJourneyType, "journey", "market_entry", "journey type to run")
	runCmd.Flags().StringVar(&runInput, "input", "", "business context to analyze")
	runCmd.Flags().StringVar(&runInputFile, "input-file", "", "file containing the business context")
	runCmd.Flags().BoolVar(&runForce, "force", false, "re-run frameworks even if already completed")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the full analysis and decisions as JSON")
	rootCmd.AddCommand(runCmd)
}
