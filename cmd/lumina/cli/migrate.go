package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lumina-africa/lumina/internal/app"
	"github.com/lumina-africa/lumina/internal/platform/db"
	migrations "github.com/lumina-africa/lumina/migrations/postgres"
)

// NewMigrateCommand builds the schema migration command.
func NewMigrateCommand() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), down)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back instead of applying")
	return cmd
}

func runMigrate(ctx context.Context, down bool) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if down {
		if err := db.Rollback(ctx, pool, migrations.FS); err != nil {
			return err
		}
		logger.Info("rollback completed")
		return nil
	}
	if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
		return err
	}
	logger.Info("migrations completed")
	return nil
}
