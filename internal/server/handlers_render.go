package server

import (
	"errors"
	"net/http"
	"os"

	"github.com/jonathan/resume-revamp/internal/rendering"
	"github.com/jonathan/resume-revamp/internal/types"
)

// Watch status strings
const (
	watchStarted  = "Watch started"
	watchStopped  = "Watch stopped"
	watchNoActive = "No active watch process found"
	watchUpdated  = "YAML updated"
)

const maxRenderLog = 4000

// renderFailure reports a failed render with the tail of the RenderCV log.
func (s *Server) renderFailure(w http.ResponseWriter, err error) {
	var renderErr *rendering.RenderError
	if !errors.As(err, &renderErr) {
		s.failure(w, "Failed to render resume", err)
		return
	}
	s.logger.Warn("render failed", "error", err)

	details := renderErr.LogOutput
	if len(details) > maxRenderLog {
		details = details[len(details)-maxRenderLog:]
	}
	s.jsonResponse(w, http.StatusInternalServerError, map[string]string{
		"error":   renderErr.Message,
		"details": details,
	})
}

func writePDF(w http.ResponseWriter, name string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// handleRenderResume renders the posted YAML once and returns the PDF.
func (s *Server) handleRenderResume(w http.ResponseWriter, r *http.Request) {
	var req types.RenderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}
	theme := req.Theme
	if theme == "" {
		theme = s.cfg.RenderTheme
	}

	pdf, err := s.deps.Renderer.Render(r.Context(), req.YAMLContent, theme)
	if err != nil {
		s.renderFailure(w, err)
		return
	}
	writePDF(w, "resume.pdf", pdf)
}

// handleGetRenderedPDF serves the newest PDF of the watch session.
func (s *Server) handleGetRenderedPDF(w http.ResponseWriter, _ *http.Request) {
	path, err := rendering.LatestPDF(s.deps.Watch.OutputDir(rendering.DefaultSessionKey))
	if err != nil {
		if errors.Is(err, rendering.ErrNoPDF) {
			s.errorResponse(w, http.StatusNotFound, "No rendered PDF found")
			return
		}
		s.failure(w, "Failed to locate rendered PDF", err)
		return
	}

	pdf, err := os.ReadFile(path)
	if err != nil {
		s.failure(w, "Failed to read rendered PDF", err)
		return
	}
	writePDF(w, "resume.pdf", pdf)
}

// handleRenderWatch starts, stops or updates the watch session.
func (s *Server) handleRenderWatch(w http.ResponseWriter, r *http.Request) {
	var req types.WatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch req.Action {
	case types.WatchStart, types.WatchStop, types.WatchUpdate:
	default:
		s.errorResponse(w, http.StatusBadRequest, `Invalid action. Use "start", "stop", or "update"`)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	key := rendering.DefaultSessionKey
	switch req.Action {
	case types.WatchStart:
		res, err := s.deps.Watch.Start(r.Context(), key, req.YAMLContent)
		if err != nil {
			s.failure(w, "Failed to start watch process", err)
			return
		}
		pid := res.PID
		s.jsonResponse(w, http.StatusOK, types.WatchResponse{
			Status:    watchStarted,
			ProcessID: &pid,
			OutputDir: res.OutputDir,
		})

	case types.WatchStop:
		msg := watchStopped
		if s.deps.Watch.Stop(r.Context(), key).Outcome == rendering.NothingToStop {
			msg = watchNoActive
		}
		s.jsonResponse(w, http.StatusOK, types.WatchResponse{Status: msg})

	case types.WatchUpdate:
		if err := s.deps.Watch.Update(key, req.YAMLContent); err != nil {
			s.failure(w, "Failed to update YAML", err)
			return
		}
		s.jsonResponse(w, http.StatusOK, types.WatchResponse{Status: watchUpdated})
	}
}

// handleRenderWatchStatus reports liveness of the watch session.
func (s *Server) handleRenderWatchStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.deps.Watch.Status(rendering.DefaultSessionKey))
}
