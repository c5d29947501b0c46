package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/config"
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/gapanalysis"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
	"github.com/jonathan/resume-revamp/internal/llm"
	"github.com/jonathan/resume-revamp/internal/objectstore"
	"github.com/jonathan/resume-revamp/internal/rendering"
	"github.com/jonathan/resume-revamp/internal/revamp"
	"github.com/jonathan/resume-revamp/internal/server"
	"github.com/jonathan/resume-revamp/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveMigrate    bool
	serveBrowserJDs bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the auth, profile, dashboard, render, ATS, revamp and review endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
	serveCmd.Flags().BoolVar(&serveBrowserJDs, "browser-fallback", false, "Render job posting URLs in headless Chrome when the static page has no text")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if serveMigrate {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	scorer, closeCache := newATSClient(ctx, cfg)
	defer closeCache()

	supervisor := rendering.NewSupervisor(
		rendering.NewRegistry(),
		rendering.ExecLauncher{Binary: cfg.RenderCVBin},
		rendering.SupervisorConfig{
			BaseDir:    cfg.WatchBaseDir,
			DesignsDir: cfg.DesignsDir,
			Design:     cfg.RenderDesign,
		},
	)

	deps := server.Deps{
		Store:     database,
		Objects:   objects,
		Renderer:  rendering.NewRenderer(cfg.RenderCVBin, cfg.DesignsDir),
		Watch:     supervisor,
		Scorer:    scorer,
		Fetcher:   jobdesc.NewFetcher(serveBrowserJDs, logger.With("component", "jobdesc")),
		JWT:       server.NewJWTService(jwtConfig),
		Passwords: passwords,
		Limiter:   ratelimit.NewLimiter(ratelimit.LoadConfig()),
		Logger:    logger,
	}

	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
		deps.Reviser = revamp.NewReviser(client, logger)
		deps.Analyzer = gapanalysis.NewAnalyzer(client, logger)
	} else {
		logger.Warn("GEMINI_API_KEY is not set, /revamp-existing and /review are disabled")
	}

	srv, err := server.New(server.ConfigFrom(cfg), deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Run(ctx)
}

// newObjectStore returns S3 storage when a bucket is configured and local
// disk storage otherwise.
func newObjectStore(ctx context.Context, c *config.Config) (objectstore.Store, error) {
	if c.S3.Bucket == "" {
		logger.Info("S3_BUCKET is not set, storing uploads on disk", "dir", c.LocalStorageDir)
		return objectstore.NewDirStore(c.LocalStorageDir)
	}
	return objectstore.NewS3Store(ctx, objectstore.S3Config{
		Bucket:       c.S3.Bucket,
		Region:       c.S3.Region,
		EndpointURL:  c.S3.Endpoint,
		AccessKey:    c.S3.AccessKeyID,
		SecretKey:    c.S3.SecretAccessKey,
		UsePathStyle: c.S3.UsePathStyle,
	})
}

// newATSClient builds the ATS client, with a Valkey score cache when an
// address is configured. An unreachable cache is skipped.
func newATSClient(ctx context.Context, c *config.Config) (*ats.Client, func()) {
	opts := []ats.Option{ats.WithLogger(logger.With("component", "ats"))}
	closeCache := func() {}

	if c.ValkeyAddr != "" {
		cache, err := ats.NewValkeyCache(ctx, c.ValkeyAddr, c.ValkeyPassword, c.ATSCacheTTL)
		if err != nil {
			logger.Warn("ATS score cache disabled", "addr", c.ValkeyAddr, "error", err)
		} else {
			opts = append(opts, ats.WithCache(cache))
			closeCache = cache.Close
		}
	}
	return ats.NewClient(c.ATSServiceURL, opts...), closeCache
}
