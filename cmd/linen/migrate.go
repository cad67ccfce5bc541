package main

import (
	"github.com/Spok95/linen-service/internal/infra/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if err := db.Migrate(cfg.Postgres.DSN); err != nil {
			log.Error("migrations failed", "err", err)
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}
