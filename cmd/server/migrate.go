package main

import (
	"errors"

	"github.com/spf13/cobra"

	"hipservice/internal/platform/config"
	"hipservice/internal/platform/logger"
	"hipservice/internal/platform/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded SQL migrations to HIP_POSTGRES_DSN",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Postgres.DSN == "" {
				return errors.New("HIP_POSTGRES_DSN is required")
			}
			log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

			ctx := cmd.Context()
			db, err := postgres.Open(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := postgres.Migrate(ctx, db)
			if err != nil {
				return err
			}
			log.InfoContext(ctx, "migrations applied", "versions", applied, "count", len(applied))
			return nil
		},
	}
}
