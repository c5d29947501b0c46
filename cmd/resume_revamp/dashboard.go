package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/dashboard"
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/observability"
	"github.com/spf13/cobra"
)

var (
	dashboardUserID   string
	dashboardPage     int
	dashboardPageSize int
	dashboardJSON     bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print a user's dashboard",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardUserID, "user-id", "", "User ID (required)")
	dashboardCmd.Flags().IntVar(&dashboardPage, "page", 1, "Page number")
	dashboardCmd.Flags().IntVar(&dashboardPageSize, "page-size", 5, "Projects per page")
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "Print the view as JSON")
	_ = dashboardCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(dashboardUserID)
	if err != nil {
		return fmt.Errorf("invalid --user-id: %w", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	ctx := cmd.Context()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	rows, err := database.ListProjectsWithResults(ctx, userID)
	if err != nil {
		return err
	}
	view := dashboard.Build(db.ToDashboardProjects(rows), dashboardPage, dashboardPageSize)
	return printView(cmd, view)
}

func printView(cmd *cobra.Command, view dashboard.View) error {
	if dashboardJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintDashboard(view)
	return nil
}
