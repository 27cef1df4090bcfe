package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lumina-africa/lumina/cmd/lumina/cli"
)

func main() {
	root := &cobra.Command{
		Use:          "lumina",
		Short:        "Lumina Africa venues and events marketplace",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Missing .env is fine; the environment may be set directly.
			_ = godotenv.Load()
		},
	}

	root.AddCommand(
		cli.NewServeCommand(),
		cli.NewWorkerCommand(),
		cli.NewMigrateCommand(),
		cli.NewSeedCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
