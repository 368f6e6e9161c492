package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stratpilot/stratpilot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize stratpilot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose a reasoning provider and model and generates a .stratpilot.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
