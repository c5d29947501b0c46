package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
	"github.com/jonathan/resume-revamp/internal/observability"
	"github.com/spf13/cobra"
)

var keywordsBrowser bool

var keywordsCmd = &cobra.Command{
	Use:   "keywords <job-description-file-or-url>",
	Short: "Print the skills the ATS service extracts from a job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeywords,
}

func init() {
	keywordsCmd.Flags().BoolVar(&keywordsBrowser, "browser-fallback", false, "Render URLs in headless Chrome when the static page has no text")
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	jd, err := loadJobDescription(cmd, args[0])
	if err != nil {
		return err
	}

	client := ats.NewClient(cfg.ATSServiceURL, ats.WithLogger(logger.With("component", "ats")))
	report := client.Keywords(ctx, ats.File{Name: jd.Name, Data: jd.Data})
	if report.IsEmpty() {
		fmt.Fprintln(cmd.OutOrStdout(), "No keywords extracted")
		return nil
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintKeywords(report)
	return nil
}

// loadJobDescription reads a job description from a local file or a posting URL.
func loadJobDescription(cmd *cobra.Command, source string) (*jobdesc.Document, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return jobdesc.NewFetcher(keywordsBrowser, logger.With("component", "jobdesc")).FromURL(cmd.Context(), source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return jobdesc.FromUpload(filepath.Base(source), data)
}
