package main

import (
	"os"

	"github.com/spf13/cobra"

	"accessgate/internal/interfaces/cli/migrate"
	"accessgate/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "accessgate",
		Short: "Accessgate - conditional access decision and owner reconciliation service",
		Long:  `Accessgate evaluates group membership requests for auto-approval and keeps group owner rosters synchronized with the declarative service catalog.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
