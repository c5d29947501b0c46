package jobdesc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	in := "Senior   Go Engineer\r\n\r\n\r\n\r\n- Build   APIs \t\n  # Requirements  \n"
	assert.Equal(t, "Senior Go Engineer\n\n- Build APIs\n# Requirements", CleanText(in))
	assert.Equal(t, "", CleanText("  \n\n "))
}

func TestExtractText(t *testing.T) {
	html := `<html><body>
		<nav>Jobs Home About</nav>
		<div class="job-description">
			<h2>Backend Engineer</h2>
			<p>Build   services in Go.</p>
			<ul><li>Kubernetes</li><li>PostgreSQL</li></ul>
			<script>track()</script>
		</div>
		<footer>Copyright</footer>
	</body></html>`

	text, err := ExtractText(html)
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "Build services in Go.")
	assert.Contains(t, text, "- Kubernetes")
	assert.Contains(t, text, "- PostgreSQL")
	assert.NotContains(t, text, "Jobs Home")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractText_FallsBackToBody(t *testing.T) {
	text, err := ExtractText(`<html><body><p>Just a body</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Just a body", text)
}

func TestFromText(t *testing.T) {
	doc, err := FromText("  Go engineer  ")
	require.NoError(t, err)
	assert.Equal(t, "Go engineer", doc.Text)
	assert.Equal(t, []byte("Go engineer"), doc.Data)
	assert.Equal(t, ContentTypeText, doc.ContentType)
	assert.False(t, doc.IsPDF())

	_, err = FromText(" \n ")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFromUpload(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     string
		wantPDF  bool
		wantText string
		wantErr  bool
	}{
		{name: "text", file: "jd.TXT", data: "Go\r\nengineer", wantText: "Go\nengineer"},
		{name: "markdown", file: "jd.md", data: "# Role", wantText: "# Role"},
		{name: "html", file: "jd.html", data: "<main><p>Remote Go role</p></main>", wantText: "Remote Go role"},
		{name: "pdf", file: "jd.pdf", data: "%PDF-1.7 ...", wantPDF: true},
		{name: "fake pdf", file: "jd.pdf", data: "hello", wantErr: true},
		{name: "unsupported", file: "jd.docx", data: "PK...", wantErr: true},
		{name: "empty", file: "jd.txt", data: "", wantErr: true},
		{name: "blank text", file: "jd.txt", data: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := FromUpload(tt.file, []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPDF, doc.IsPDF())
			assert.Equal(t, tt.wantText, doc.Text)
		})
	}
}

func TestFromUpload_UnsupportedIsTypedError(t *testing.T) {
	_, err := FromUpload("jd.docx", []byte("x"))
	var jdErr *Error
	require.ErrorAs(t, err, &jdErr)
	assert.Contains(t, err.Error(), ".docx")
}

func longPosting() string {
	return "<main><p>" + strings.Repeat("Distributed systems in Go. ", 40) + "</p></main>"
}

func TestFetcher_FromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.UserAgent())
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(longPosting()))
	}))
	defer server.Close()

	f := NewFetcher(false, nil)
	f.Render = func(context.Context, string) (string, error) {
		t.Fatal("browser must not be used for a complete page")
		return "", nil
	}

	doc, err := f.FromURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "Distributed systems in Go.")
}

func TestFetcher_FromURL_BrowserFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root">Loading</div></body></html>`))
	}))
	defer server.Close()

	f := NewFetcher(false, nil)
	var rendered string
	f.Render = func(_ context.Context, pageURL string) (string, error) {
		rendered = pageURL
		return longPosting(), nil
	}

	doc, err := f.FromURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, rendered)
	assert.Contains(t, doc.Text, "Distributed systems")
}

func TestFetcher_FromURL_BrowserFailureKeepsStaticText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<main>Short posting</main>`))
	}))
	defer server.Close()

	f := NewFetcher(false, nil)
	f.Render = func(context.Context, string) (string, error) {
		return "", errors.New("chrome not installed")
	}

	doc, err := f.FromURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Short posting", doc.Text)
}

func TestFetcher_FromURL_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(false, nil)
	for _, u := range []string{"not-a-url", "ftp://example.com/jd", server.URL} {
		_, err := f.FromURL(context.Background(), u)
		var jdErr *Error
		assert.ErrorAs(t, err, &jdErr, u)
	}
}
