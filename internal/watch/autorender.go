package watch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// DefaultRenderTimeout bounds one automatic render.
const DefaultRenderTimeout = 15 * time.Second

// Renderer renders a changed input file.
type Renderer interface {
	RenderFile(ctx context.Context, path, theme string) (string, error)
}

// AutoRenderer re-renders every accepted event. Failures are logged and the
// loop keeps going.
type AutoRenderer struct {
	renderer Renderer
	theme    string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAutoRenderer creates an AutoRenderer.
func NewAutoRenderer(renderer Renderer, theme string) *AutoRenderer {
	return &AutoRenderer{
		renderer: renderer,
		theme:    theme,
		timeout:  DefaultRenderTimeout,
		logger:   slog.With("component", "auto_render"),
	}
}

// Run consumes events until the stream ends or ctx is done.
func (a *AutoRenderer) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			a.handle(ctx, ev)
		}
	}
}

func (a *AutoRenderer) handle(ctx context.Context, ev Event) {
	if _, err := os.Stat(ev.Path); err != nil {
		a.logger.Warn("changed file is not readable", "path", ev.Path, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	pdf, err := a.renderer.RenderFile(ctx, ev.Path, a.theme)
	if err != nil {
		a.logger.Error("auto-render failed", "path", ev.Path, "error", err)
		return
	}
	a.logger.Info("auto-render finished", "path", ev.Path, "pdf", pdf, "duration", time.Since(start))
}
