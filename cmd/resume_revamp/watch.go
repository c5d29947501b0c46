package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/resume-revamp/internal/rendering"
	"github.com/jonathan/resume-revamp/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchTheme    string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-render YAML files in a directory whenever they change",
	Long: `Watch a directory tree and render every changed .yaml file with RenderCV.
Bursts of edits are debounced so each window triggers at most one render.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchTheme, "theme", "", "Design name (defaults to RENDER_DESIGN)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultWindow, "Minimum spacing between renders")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	theme := watchTheme
	if theme == "" {
		theme = cfg.RenderDesign
	}

	w, err := watch.New(args[0], watch.Options{Recursive: true})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := watch.Filter(ctx, w.Events(), watch.NewDebouncer(watchDebounce, watch.DefaultSuffix))
	auto := watch.NewAutoRenderer(rendering.NewRenderer(cfg.RenderCVBin, cfg.DesignsDir), theme)

	logger.Info("watching for changes", "dir", args[0], "theme", theme, "debounce", watchDebounce)
	if err := auto.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
