package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/server/middleware"
	"github.com/jonathan/resume-revamp/internal/types"
)

const contentTypeMarkdown = "text/markdown; charset=utf-8"

// handleReview runs a skill-gap analysis. With a project_id the caller must
// own the project and the report is stored with it.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	if s.deps.Analyzer == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "gap analysis is not configured")
		return
	}
	if !s.parseMultipart(w, r) {
		return
	}
	ctx := r.Context()

	var project *db.Project
	if rawID := formString(r, "project_id"); rawID != "" {
		userID, err := middleware.GetUserID(r)
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "Sign in to attach a review to a project")
			return
		}
		if project, err = s.projectFor(ctx, userID, rawID); err != nil {
			s.failure(w, "Failed to load project", err)
			return
		}
	}

	resume, err := resumePDF(r)
	if err != nil {
		s.failure(w, "Invalid resume upload", err)
		return
	}
	jd, err := s.jobDescription(ctx, r)
	if err != nil {
		s.failure(w, "Invalid job description", err)
		return
	}

	jobRole := formString(r, "jobRole")
	if jobRole == "" && project != nil {
		jobRole = project.JobRole
	}

	report, err := s.deps.Analyzer.Analyze(ctx, resume.Data, jd, jobRole)
	if err != nil {
		s.failure(w, "Failed to analyze resume", err)
		return
	}
	markdown := report.Markdown()
	missing := report.MissingSkills()
	if missing == nil {
		missing = []string{}
	}

	resp := types.ReviewResponse{Report: markdown, MissingSkills: missing}
	if project != nil {
		if err := s.saveReview(r, project.ID, markdown, missing); err != nil {
			s.failure(w, "Failed to save gap analysis", err)
			return
		}
		id := project.ID
		resp.ProjectID = &id
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) saveReview(r *http.Request, projectID uuid.UUID, markdown string, missing []string) error {
	ctx := r.Context()
	if err := s.storeProjectFile(ctx, projectID, db.FileTypeGapAnalysis, "gap_analysis.md", contentTypeMarkdown, []byte(markdown)); err != nil {
		return err
	}
	if err := s.deps.Store.SaveGapAnalysis(ctx, &db.GapAnalysis{
		ProjectID:      projectID,
		ReportMarkdown: markdown,
		MissingSkills:  missing,
	}); err != nil {
		return err
	}
	key := storageKey(projectID, db.FileTypeGapAnalysis, "gap_analysis.md", contentTypeMarkdown)
	return s.deps.Store.MarkGapAnalysis(ctx, projectID, []string{key})
}
