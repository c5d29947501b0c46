package rendering

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	// copies the input into the output dir so the "PDF" content is checkable
	bin := writeScript(t, `mkdir -p rendercv_output && cp "$2" rendercv_output/Jane_CV.pdf`)

	r := NewRenderer(bin, "")
	pdf, err := r.Render(context.Background(), "cv:\n  name: Jane\n", "")
	require.NoError(t, err)
	assert.Equal(t, "cv:\n  name: Jane\n", string(pdf))
}

func TestRenderer_UsesThemeDesign(t *testing.T) {
	designs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(designs, "sb2nov.yaml"), []byte("design: {}"), 0o644))
	bin := writeScript(t, `mkdir -p rendercv_output && echo "$@" > rendercv_output/out.pdf`)

	r := NewRenderer(bin, designs)
	pdf, err := r.Render(context.Background(), "cv: {}", "sb2nov")
	require.NoError(t, err)
	assert.Equal(t, "render resume.yaml --design designs/sb2nov.yaml\n", string(pdf))
}

func TestRenderer_RejectsThemePaths(t *testing.T) {
	assert.Equal(t, "", DesignArg(t.TempDir(), "../etc/passwd"))
}

func TestRenderer_CommandFailure(t *testing.T) {
	bin := writeScript(t, "echo 'invalid yaml' >&2\nexit 3")

	_, err := NewRenderer(bin, "").Render(context.Background(), "cv: {}", "")
	require.Error(t, err)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Contains(t, renderErr.LogOutput, "invalid yaml")
}

func TestRenderer_NoPDF(t *testing.T) {
	bin := writeScript(t, "exit 0")

	_, err := NewRenderer(bin, "").Render(context.Background(), "cv: {}", "")
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.ErrorIs(t, err, ErrNoPDF)
}

func TestRenderer_Timeout(t *testing.T) {
	bin := writeScript(t, "exec sleep 10")

	r := NewRenderer(bin, "")
	r.Timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := r.Render(context.Background(), "cv: {}", "")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLatestPDF(t *testing.T) {
	dir := t.TempDir()

	_, err := LatestPDF(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrNoPDF)

	old := filepath.Join(dir, "old.pdf")
	recent := filepath.Join(dir, "new.pdf")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(recent, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resume.typ"), []byte("x"), 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	got, err := LatestPDF(dir)
	require.NoError(t, err)
	assert.Equal(t, recent, got)
}
