package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stratpilot",
	Short: "AI-guided strategic analysis journeys",
	Long: `Stratpilot walks a business through curated strategy journeys: ordered
sequences of analysis frameworks (PESTLE, Porter's Five Forces, SWOT,
Business Model Canvas, root-cause trees) executed by an AI reasoning
service, with each framework's findings feeding the next. Results are
versioned, synthesized into decision points, and convertible into an
execution program.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".stratpilot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
