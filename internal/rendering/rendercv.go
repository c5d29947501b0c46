package rendering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBinary is the RenderCV executable looked up on PATH.
	DefaultBinary = "rendercv"
	// RenderTimeout bounds a one-shot render.
	RenderTimeout = 30 * time.Second
)

// Renderer runs one-shot RenderCV renders.
type Renderer struct {
	Binary     string
	DesignsDir string
	Timeout    time.Duration
	logger     *slog.Logger
}

// NewRenderer creates a renderer. An empty binary means DefaultBinary.
func NewRenderer(binary, designsDir string) *Renderer {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Renderer{
		Binary:     binary,
		DesignsDir: designsDir,
		Timeout:    RenderTimeout,
		logger:     slog.With("component", "renderer"),
	}
}

// Render renders RenderCV YAML in a scratch directory and returns the PDF bytes.
func (r *Renderer) Render(ctx context.Context, content, theme string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "rendercv-*")
	if err != nil {
		return nil, &RenderError{Message: "failed to create working directory", Cause: err}
	}
	defer os.RemoveAll(dir)

	if r.DesignsDir != "" {
		if err := copyDir(r.DesignsDir, filepath.Join(dir, DesignsDirName)); err != nil {
			r.logger.Warn("failed to copy designs", "designs_dir", r.DesignsDir, "error", err)
		}
	}

	input := filepath.Join(dir, InputFileName)
	if err := os.WriteFile(input, []byte(content), 0o644); err != nil {
		return nil, &RenderError{Message: "failed to write input file", Cause: err}
	}

	pdfPath, err := r.RenderFile(ctx, input, theme)
	if err != nil {
		return nil, err
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, &RenderError{Message: "failed to read rendered PDF", Cause: err}
	}
	return pdf, nil
}

// RenderFile renders an existing input file in its own directory and returns
// the path of the produced PDF.
func (r *Renderer) RenderFile(ctx context.Context, path, theme string) (string, error) {
	if _, err := exec.LookPath(r.Binary); err != nil {
		return "", &RenderError{
			Message: fmt.Sprintf("%s not found in PATH", r.Binary),
			Cause:   err,
		}
	}

	dir := filepath.Dir(path)
	args := []string{"render", filepath.Base(path)}
	if design := DesignArg(dir, theme); design != "" {
		args = append(args, "--design", design)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = RenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second

	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	logOutput := output.String()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", &RenderError{Message: "rendercv timed out", LogOutput: logOutput, Cause: ctx.Err()}
	}
	if runErr != nil {
		return "", &RenderError{Message: "rendercv exited with an error", LogOutput: logOutput, Cause: runErr}
	}

	pdfPath, err := LatestPDF(filepath.Join(dir, OutputDirName))
	if err != nil {
		return "", &RenderError{Message: "rendercv produced no PDF", LogOutput: logOutput, Cause: err}
	}

	r.logger.Debug("render finished", "input", path, "pdf", pdfPath, "duration", time.Since(start))
	return pdfPath, nil
}
