package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stratpilot/stratpilot/internal/journey"
)

var journeysCmd = &cobra.Command{
	Use:   "journeys",
	Short: "List the available strategic journeys",
	Run: func(cmd *cobra.Command, args []string) {
		registry := journey.NewRegistry()
		for _, def := range registry.All() {
			frameworks := make([]string, len(def.Frameworks))
			for i, id := range def.Frameworks {
				frameworks[i] = string(id)
			}
			status := ""
			if !def.Available {
				status = " (unavailable)"
			}
			fmt.Printf("%-16s %s%s\n", def.Type, def.Title, status)
			fmt.Printf("%-16s frameworks: %s\n", "", strings.Join(frameworks, " -> "))
		}
	},
}

func init() {
	rootCmd.AddCommand(journeysCmd)
}
