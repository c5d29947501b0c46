package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/resume-revamp/internal/dashboard"
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/server/middleware"
)

// Dashboard paging
const (
	defaultPage     = 1
	defaultPageSize = 5
	maxPageSize     = 100
)

// queryInt parses a positive integer query parameter. Missing or
// unparsable values give def; values below 1 are clamped to 1.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return max(n, 1)
}

// handleDashboard always answers 200. A storage failure is logged and
// reported as an empty view.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	page := queryInt(r, "page", defaultPage)
	pageSize := min(queryInt(r, "projects_per_page", defaultPageSize), maxPageSize)

	rows, err := s.deps.Store.ListProjectsWithResults(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to load dashboard projects", "user_id", userID, "error", err)
		s.jsonResponse(w, http.StatusOK, dashboard.Empty(page, pageSize))
		return
	}

	s.jsonResponse(w, http.StatusOK, dashboard.Build(db.ToDashboardProjects(rows), page, pageSize))
}
