package jobdesc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Fetch defaults
const (
	DefaultFetchTimeout   = 30 * time.Second
	DefaultBrowserTimeout = 30 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (compatible; ResumeRevamp/1.0)"
	// MinContentLength is the extracted length below which a page is treated
	// as a client-rendered app and retried in a headless browser.
	MinContentLength = 500
	maxPageBytes     = 5 << 20
)

// RenderFunc returns the rendered HTML of a page.
type RenderFunc func(ctx context.Context, pageURL string) (string, error)

// Fetcher downloads job postings.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	// Render is used when the static page has too little text. Nil disables
	// the browser fallback.
	Render RenderFunc
	Logger *slog.Logger
}

// NewFetcher returns a Fetcher with the chromedp fallback enabled when
// useBrowser is set.
func NewFetcher(useBrowser bool, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fetcher{
		HTTPClient: &http.Client{Timeout: DefaultFetchTimeout},
		UserAgent:  DefaultUserAgent,
		Logger:     logger,
	}
	if useBrowser {
		f.Render = func(ctx context.Context, pageURL string) (string, error) {
			return RenderWithBrowser(ctx, pageURL, DefaultBrowserTimeout)
		}
	}
	return f
}

// FromURL fetches a posting and returns it as a text document.
func (f *Fetcher) FromURL(ctx context.Context, rawURL string) (*Document, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &Error{Source: rawURL, Message: "invalid URL", Cause: err}
	}

	html, err := f.get(ctx, parsed.String())
	if err != nil {
		return nil, err
	}
	text, err := ExtractText(html)
	if err != nil {
		return nil, &Error{Source: rawURL, Message: "content extraction failed", Cause: err}
	}

	if len(text) < MinContentLength && f.Render != nil {
		f.Logger.Info("static page too short, rendering in browser", "url", rawURL, "chars", len(text))
		rendered, err := f.Render(ctx, parsed.String())
		if err != nil {
			f.Logger.Warn("browser rendering failed, using static content", "url", rawURL, "error", err)
		} else if browserText, err := ExtractText(rendered); err == nil && len(browserText) > len(text) {
			text = browserText
		}
	}

	if text == "" {
		return nil, &Error{Source: rawURL, Message: "no text found", Cause: ErrEmpty}
	}
	return textDocument("job_description.txt", text), nil
}

func (f *Fetcher) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &Error{Source: pageURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{Source: pageURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Source: pageURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", &Error{Source: pageURL, Message: "failed to read response body", Cause: err}
	}
	return string(body), nil
}

// RenderWithBrowser loads pageURL in headless Chrome and returns the
// rendered HTML. Chrome or Chromium must be installed.
func RenderWithBrowser(ctx context.Context, pageURL string, timeout time.Duration) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return html, nil
}
