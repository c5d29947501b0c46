package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/config"
	"github.com/jonathan/resume-revamp/internal/gapanalysis"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
	"github.com/jonathan/resume-revamp/internal/objectstore"
	"github.com/jonathan/resume-revamp/internal/rendering"
	"github.com/jonathan/resume-revamp/internal/revamp"
	"github.com/jonathan/resume-revamp/internal/server/middleware"
	"github.com/jonathan/resume-revamp/internal/server/ratelimit"
	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// Renderer renders RenderCV YAML to PDF bytes.
type Renderer interface {
	Render(ctx context.Context, content, theme string) ([]byte, error)
}

// WatchSupervisor manages RenderCV watch processes.
type WatchSupervisor interface {
	Start(ctx context.Context, key rendering.SessionKey, content string) (rendering.StartResult, error)
	Stop(ctx context.Context, key rendering.SessionKey) rendering.StopResult
	Update(key rendering.SessionKey, content string) error
	Status(key rendering.SessionKey) rendering.Status
	OutputDir(key rendering.SessionKey) string
	StopAll(ctx context.Context)
}

// Scorer talks to the ATS scoring service.
type Scorer interface {
	Score(ctx context.Context, resume, jd ats.File) (float64, error)
	Keywords(ctx context.Context, jd ats.File) ats.KeywordReport
}

// Reviser produces revamped RenderCV YAML.
type Reviser interface {
	Revamp(ctx context.Context, req *revamp.Request) (string, error)
}

// GapAnalyzer produces skill-gap reports.
type GapAnalyzer interface {
	Analyze(ctx context.Context, resumePDF []byte, jd *jobdesc.Document, jobRole string) (*gapanalysis.Report, error)
}

// JobFetcher loads a job description from a posting URL.
type JobFetcher interface {
	FromURL(ctx context.Context, rawURL string) (*jobdesc.Document, error)
}

// Config holds server configuration
type Config struct {
	Port            int
	CORSOrigins     []string
	MaxUploadBytes  int64
	RenderTheme     string
	ShutdownTimeout time.Duration
}

// ConfigFrom builds the server configuration from the loaded app config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Port:           cfg.Port,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		RenderTheme:    cfg.RenderDesign,
	}
}

// Deps are the collaborators of the server. Scorer, Reviser, Analyzer and
// Fetcher are optional; their endpoints answer 503 when unset.
type Deps struct {
	Store     Store
	Objects   objectstore.Store
	Renderer  Renderer
	Watch     WatchSupervisor
	Scorer    Scorer
	Reviser   Reviser
	Analyzer  GapAnalyzer
	Fetcher   JobFetcher
	JWT       *JWTService
	Passwords *config.PasswordConfig
	Limiter   *ratelimit.Limiter
	Logger    *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	cfg         Config
	deps        Deps
	httpServer  *http.Server
	authHandler *AuthHandler
	logger      *slog.Logger
	handler     http.Handler
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("server: store is required")
	case deps.Objects == nil:
		return nil, errors.New("server: object store is required")
	case deps.Renderer == nil || deps.Watch == nil:
		return nil, errors.New("server: renderer and watch supervisor are required")
	case deps.JWT == nil || deps.Passwords == nil:
		return nil, errors.New("server: JWT and password configuration are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = int64(config.DefaultMaxUploadMB) << 20
	}
	if cfg.RenderTheme == "" {
		cfg.RenderTheme = config.DefaultRenderDesign
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With("component", "server"),
	}
	s.authHandler = NewAuthHandler(NewUserService(deps.Store, deps.Passwords), deps.JWT, deps.Logger)

	validator := deps.JWT.AsTokenValidator()
	requireAuth := middleware.AuthMiddleware(validator)
	optionalAuth := middleware.OptionalAuth(validator)
	authed := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }
	optional := func(h http.HandlerFunc) http.Handler { return optionalAuth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /auth/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /auth/logout", s.authHandler.Logout)
	mux.Handle("GET /auth/me", authed(s.authHandler.Me))
	mux.Handle("GET /auth/verify-token", authed(s.authHandler.VerifyToken))

	// Profile and dashboard
	mux.Handle("GET /profile", authed(s.handleGetProfile))
	mux.Handle("POST /profile", authed(s.handleSaveProfile))
	mux.Handle("GET /dashboard", authed(s.handleDashboard))

	// Rendering
	mux.HandleFunc("POST /render-resume", s.handleRenderResume)
	mux.HandleFunc("GET /get-rendered-pdf", s.handleGetRenderedPDF)
	mux.HandleFunc("POST /render-resume-watch", s.handleRenderWatch)
	mux.HandleFunc("GET /render-resume-watch", s.handleRenderWatchStatus)

	// Scoring, revamp and review
	mux.HandleFunc("POST /get-ats-score", s.handleATSScore)
	mux.Handle("POST /revamp-existing", optional(s.handleRevampExisting))
	mux.Handle("POST /review", optional(s.handleReview))

	// Projects
	mux.Handle("GET /project/{id}/yaml", authed(s.handleProjectYAML))
	mux.Handle("GET /project/{id}/original-resume", authed(s.handleOriginalResume))
	mux.Handle("POST /project/{id}/calculate-ats", authed(s.handleCalculateATS))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute, // revamp calls the LLM, the renderer and the ATS service
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully: stop
// accepting requests, stop watch processes and the limiter.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		err := s.httpServer.Shutdown(shutdownCtx)
		s.deps.Watch.StopAll(shutdownCtx)
		s.deps.Limiter.Stop()
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// withCORS adds CORS headers for the configured origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(s.cfg.CORSOrigins))
	for _, o := range s.cfg.CORSOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.deps.Limiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(s.logger, w, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeError(s.logger, w, status, message)
}

// failure maps err to a status. Server errors are logged and their details
// withheld from the client.
func (s *Server) failure(w http.ResponseWriter, msg string, err error) {
	status := HTTPStatus(err)
	switch {
	case status == http.StatusBadGateway:
		s.logger.Warn(msg, "error", err)
		s.errorResponse(w, status, msg)
	case status >= http.StatusInternalServerError:
		s.logger.Error(msg, "error", err)
		s.errorResponse(w, status, msg)
	default:
		s.errorResponse(w, status, err.Error())
	}
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(logger, w, status, map[string]string{"error": message})
}

// decodeJSON decodes a request body of at most 1 MiB.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// extractClientID returns the client IP from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retry := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = retry
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}

	s.logger.Warn("rate limit exceeded", "client", clientID, "limit", info.Limit, "reset_at", info.ResetTime)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
