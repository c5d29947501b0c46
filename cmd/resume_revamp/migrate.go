package main

import (
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  `Create or update every table used by the server. Running it twice is a no-op.`,
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	ctx := cmd.Context()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	return database.Migrate(ctx)
}
