package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/meterly-io/meterly/internal/interfaces/cli/migrate"
	"github.com/meterly-io/meterly/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "meterly",
		Short: "Meterly - token metering and billing backend",
		Long:  `Meterly serves the dashboard API, keeps token ledgers consistent under webhook delivery, and ships its own migration tooling.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
