package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/app"
	"github.com/lumina-africa/lumina/internal/platform/db"
	"github.com/lumina-africa/lumina/internal/venues"
)

// NewSeedCommand builds the development data seeder.
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert development fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

type seedAccount struct {
	email string
	name  string
	city  string
	role  access.Role
}

var seedAccounts = []seedAccount{
	{email: "admin@lumina.africa", name: "Lumina Admin", city: "Accra", role: access.RoleAdmin},
	{email: "owner@lumina.africa", name: "Efua Boateng", city: "Accra", role: access.RoleVenueOwner},
	{email: "organizer@lumina.africa", name: "Tumi Ndlovu", city: "Johannesburg", role: access.RoleOrganizer},
	{email: "user@lumina.africa", name: "Chidi Okafor", city: "Lagos", role: access.RoleUser},
}

func runSeed(ctx context.Context) error {
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

	hash, err := bcrypt.GenerateFromPassword([]byte("lumina-dev"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		ids := map[access.Role]int64{}
		for _, acc := range seedAccounts {
			var id int64
			err := tx.QueryRow(ctx, `
				INSERT INTO users (email, password_hash, full_name, city, role, is_active, is_email_verified)
				VALUES ($1, $2, $3, $4, $5, TRUE, TRUE)
				ON CONFLICT (email) DO UPDATE SET full_name = excluded.full_name
				RETURNING id`,
				acc.email, string(hash), acc.name, venues.NormalizeCity(acc.city), acc.role,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", acc.email, err)
			}
			ids[acc.role] = id
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO venues (owner_id, name, description, city, address, category, capacity, price_per_day, is_published)
			VALUES
				($1, 'Harbour Hall', 'Waterfront conference hall', 'Accra', '12 Marina Rd', 'conference', 300, 150000, TRUE),
				($1, 'Makola Gardens', 'Open-air wedding garden', 'Accra', '3 Makola St', 'wedding', 150, 90000, TRUE)
			ON CONFLICT DO NOTHING`,
			ids[access.RoleVenueOwner])
		return err
	})
	if err != nil {
		return err
	}

	logger.Info("seed completed", "accounts", len(seedAccounts))
	return nil
}
