package main

import (
	"os"

	"github.com/stratpilot/stratpilot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
