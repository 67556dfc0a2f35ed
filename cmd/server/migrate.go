package main

import (
	"github.com/spf13/cobra"
	"github.com/vytor/studyspace/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		// Open applies pending migrations.
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()

		versions, err := database.AppliedMigrations(cmd.Context())
		if err != nil {
			return err
		}
		for _, v := range versions {
			log.Info("applied: %s", v)
		}
		return nil
	},
}
