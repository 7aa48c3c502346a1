package main

import (
	"fmt"

	"news_verifier/internal/db"
	"news_verifier/internal/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database, err := db.NewDB(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("db connection: %w", err)
		}
		defer database.Close()

		if err := migrate(ctx, database, cfg); err != nil {
			return err
		}
		logger.Log.Info("Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
