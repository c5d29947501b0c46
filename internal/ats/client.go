// Package ats talks to the external ATS scoring service.
package ats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/resume-revamp/internal/schemas"
)

// DefaultTimeout bounds a single call to the scoring service.
const DefaultTimeout = 60 * time.Second

// File is an in-memory upload sent to the service.
type File struct {
	Name string
	Data []byte
}

// KeywordReport is the keyword breakdown of a job description.
type KeywordReport struct {
	Keywords        []string `json:"keywords"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
}

// IsEmpty reports whether no keyword of any kind was extracted.
func (r KeywordReport) IsEmpty() bool {
	return len(r.Keywords) == 0 && len(r.RequiredSkills) == 0 && len(r.PreferredSkills) == 0
}

// ServiceError is returned when the service answers with a non-200 status
// or an unusable body.
type ServiceError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("ats %s: %s", e.Endpoint, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("ats %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// ScoreCache stores scores keyed by ScoreKey.
type ScoreCache interface {
	GetScore(ctx context.Context, key string) (float64, bool, error)
	SetScore(ctx context.Context, key string, score float64) error
}

// Client calls the /analyze and /keywords endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ScoreCache
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache enables score caching.
func WithCache(cache ScoreCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type scoreResponse struct {
	ATSScore *float64 `json:"ats_score"`
}

// Score uploads a rendered resume and a job description and returns the
// ATS score. Cached scores are returned without calling the service.
func (c *Client) Score(ctx context.Context, resume, jd File) (float64, error) {
	key := ScoreKey(resume.Data, jd.Data)
	if c.cache != nil {
		score, ok, err := c.cache.GetScore(ctx, key)
		if err != nil {
			c.logger.Warn("ats cache read failed", "error", err)
		} else if ok {
			return score, nil
		}
	}

	body, err := c.post(ctx, "/analyze", map[string]File{"resume": resume, "jd": jd})
	if err != nil {
		return 0, err
	}

	var resp scoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, &ServiceError{Endpoint: "/analyze", Message: "invalid response body", Cause: err}
	}
	if resp.ATSScore == nil {
		return 0, &ServiceError{Endpoint: "/analyze", Message: "response has no ats_score"}
	}

	if c.cache != nil {
		if err := c.cache.SetScore(ctx, key, *resp.ATSScore); err != nil {
			c.logger.Warn("ats cache write failed", "error", err)
		}
	}
	return *resp.ATSScore, nil
}

// Keywords extracts keywords from a job description. Service failures and
// malformed reports yield an empty report so callers can proceed.
func (c *Client) Keywords(ctx context.Context, jd File) KeywordReport {
	report, err := c.keywords(ctx, jd)
	if err != nil {
		c.logger.Warn("keyword extraction failed, using empty report", "error", err)
		return KeywordReport{Keywords: []string{}, RequiredSkills: []string{}, PreferredSkills: []string{}}
	}
	return report
}

func (c *Client) keywords(ctx context.Context, jd File) (KeywordReport, error) {
	body, err := c.post(ctx, "/keywords", map[string]File{"jd": jd})
	if err != nil {
		return KeywordReport{}, err
	}
	if err := schemas.Validate(schemas.ATSKeywords, string(body)); err != nil {
		return KeywordReport{}, &ServiceError{Endpoint: "/keywords", Message: "unexpected report shape", Cause: err}
	}
	var report KeywordReport
	if err := json.Unmarshal(body, &report); err != nil {
		return KeywordReport{}, &ServiceError{Endpoint: "/keywords", Message: "invalid response body", Cause: err}
	}
	if report.Keywords == nil {
		report.Keywords = []string{}
	}
	if report.RequiredSkills == nil {
		report.RequiredSkills = []string{}
	}
	if report.PreferredSkills == nil {
		report.PreferredSkills = []string{}
	}
	return report, nil
}

func (c *Client) post(ctx context.Context, endpoint string, files map[string]File) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	// fixed field order keeps requests reproducible
	for _, field := range []string{"resume", "jd"} {
		f, ok := files[field]
		if !ok {
			continue
		}
		name := f.Name
		if name == "" {
			name = field
		}
		part, err := w.CreateFormFile(field, filepath.Base(name))
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write form file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Endpoint: endpoint, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ServiceError{Endpoint: endpoint, Message: "failed to read response", Cause: err}
	}
	c.logger.Debug("ats call", "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return body, nil
}
