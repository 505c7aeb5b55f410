package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"socloud/internal/config"
	"socloud/internal/store"
)

// adminSeeder is the part of the user service bootstrap needs.
type adminSeeder interface {
	EnsureAdmin(ctx context.Context, email, password string) error
}

// bootstrap applies pending migrations when enabled and seeds the configured
// admin account. Both steps are safe to repeat on every start.
func bootstrap(ctx context.Context, logger zerolog.Logger, cfg *config.Config, db *sql.DB, users adminSeeder) error {
	if cfg.Database.AutoMigrate {
		if err := store.Migrate(db); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
		logger.Info().Msg("database schema up to date")
	}

	if !cfg.Admin.Enabled() {
		return nil
	}
	if err := users.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("bootstrap admin user: %w", err)
	}
	logger.Info().Str("email", cfg.Admin.Email).Msg("admin account ensured")
	return nil
}
