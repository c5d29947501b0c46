package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-revamp/internal/rendering"
	"github.com/spf13/cobra"
)

var (
	renderTheme string
	renderOut   string
)

var renderCmd = &cobra.Command{
	Use:   "render <resume.yaml>",
	Short: "Render a RenderCV YAML file to PDF once",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "Design name (defaults to RENDER_DESIGN)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output PDF path (defaults to the input name with .pdf)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	input := args[0]
	content, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	theme := renderTheme
	if theme == "" {
		theme = cfg.RenderDesign
	}
	out := renderOut
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
	}

	renderer := rendering.NewRenderer(cfg.RenderCVBin, cfg.DesignsDir)
	pdf, err := renderer.Render(cmd.Context(), string(content), theme)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s (%d bytes)\n", out, len(pdf))
	return nil
}
