// Package main provides the entry point for the resume revamp HTTP API server and CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/resume-revamp/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
	logger     = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "resume_revamp",
	Short: "Resume revamp HTTP API server",
	Long: "Resume revamp rewrites existing resumes as RenderCV YAML tailored to a job description, " +
		"scores them with an ATS service and renders them to PDF via REST API.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an optional YAML config file")
}

// loadConfig reads the configuration and installs the process logger.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c
	logger = config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	slog.SetDefault(logger)
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
