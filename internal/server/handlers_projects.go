package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
	"github.com/jonathan/resume-revamp/internal/objectstore"
	"github.com/jonathan/resume-revamp/internal/server/middleware"
	"github.com/jonathan/resume-revamp/internal/types"
)

var errScoringDisabled = errors.New("ATS scoring is not configured")

// ownedProject loads the {id} project of the request and checks that the
// caller owns it.
func (s *Server) ownedProject(r *http.Request) (*db.Project, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, &ErrForbidden{Resource: "project"}
	}
	return s.projectFor(r.Context(), userID, r.PathValue("id"))
}

func (s *Server) projectFor(ctx context.Context, userID uuid.UUID, rawID string) (*db.Project, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, &ErrValidation{Field: "project_id", Message: "invalid project id"}
	}
	project, err := s.deps.Store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &ErrNotFound{Resource: "project", ID: id.String()}
	}
	if project.UserID != userID {
		return nil, &ErrForbidden{Resource: "project"}
	}
	return project, nil
}

// storageKey is the object key of a project file.
func storageKey(projectID uuid.UUID, fileType, fileName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".txt"
		if contentType == jobdesc.ContentTypePDF {
			ext = ".pdf"
		}
	}
	return path.Join("projects", projectID.String(), fileType+ext)
}

// storeProjectFile uploads data and records it against the project.
func (s *Server) storeProjectFile(ctx context.Context, projectID uuid.UUID, fileType, fileName, contentType string, data []byte) error {
	key := storageKey(projectID, fileType, fileName, contentType)
	if err := s.deps.Objects.Put(ctx, key, data, contentType); err != nil {
		return fmt.Errorf("failed to upload %s: %w", fileType, err)
	}
	return s.deps.Store.SaveProjectFile(ctx, &db.ProjectFile{
		ProjectID:   projectID,
		FileType:    fileType,
		FileName:    fileName,
		StorageKey:  key,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	})
}

// loadProjectFile downloads the project's file of fileType.
func (s *Server) loadProjectFile(ctx context.Context, projectID uuid.UUID, fileType string) (*db.ProjectFile, []byte, error) {
	rec, err := s.deps.Store.GetProjectFile(ctx, projectID, fileType)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, &ErrNotFound{Resource: strings.ReplaceAll(fileType, "_", " ")}
	}
	data, err := s.deps.Objects.Get(ctx, rec.StorageKey)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return nil, nil, &ErrNotFound{Resource: "stored file", ID: rec.StorageKey}
		}
		return nil, nil, err
	}
	return rec, data, nil
}

// scoreYAML renders content and scores the PDF against the job description.
func (s *Server) scoreYAML(ctx context.Context, content string, jd ats.File) ([]byte, float64, error) {
	if s.deps.Scorer == nil {
		return nil, 0, errScoringDisabled
	}
	pdf, err := s.deps.Renderer.Render(ctx, content, s.cfg.RenderTheme)
	if err != nil {
		return nil, 0, err
	}
	score, err := s.deps.Scorer.Score(ctx, ats.File{Name: "resume.pdf", Data: pdf}, jd)
	if err != nil {
		return pdf, 0, err
	}
	return pdf, score, nil
}

// handleProjectYAML returns the generated YAML and score of a project.
func (s *Server) handleProjectYAML(w http.ResponseWriter, r *http.Request) {
	project, err := s.ownedProject(r)
	if err != nil {
		s.failure(w, "Failed to load project", err)
		return
	}

	result, err := s.deps.Store.GetProjectResult(r.Context(), project.ID)
	if err != nil {
		s.failure(w, "Failed to load project result", err)
		return
	}
	if result == nil {
		s.errorResponse(w, http.StatusNotFound, "Project YAML not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ProjectYAMLResponse{
		ProjectID:   project.ID,
		JobRole:     project.JobRole,
		YAMLContent: result.YAMLContent,
		ATSScore:    result.ATSScore,
	})
}

// handleOriginalResume serves the resume PDF uploaded for a project.
func (s *Server) handleOriginalResume(w http.ResponseWriter, r *http.Request) {
	project, err := s.ownedProject(r)
	if err != nil {
		s.failure(w, "Failed to load project", err)
		return
	}
	_, data, err := s.loadProjectFile(r.Context(), project.ID, db.FileTypeOriginalResume)
	if err != nil {
		s.failure(w, "Failed to load original resume", err)
		return
	}
	writePDF(w, "original_resume.pdf", data)
}

// handleCalculateATS re-scores a project's YAML (the posted yaml_content,
// or the stored result) against its stored job description and saves it.
func (s *Server) handleCalculateATS(w http.ResponseWriter, r *http.Request) {
	if s.deps.Scorer == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, errScoringDisabled.Error())
		return
	}
	project, err := s.ownedProject(r)
	if err != nil {
		s.failure(w, "Failed to load project", err)
		return
	}
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	content := strings.TrimSpace(r.FormValue("yaml_content"))
	if content == "" {
		result, err := s.deps.Store.GetProjectResult(ctx, project.ID)
		if err != nil {
			s.failure(w, "Failed to load project result", err)
			return
		}
		if result == nil {
			s.errorResponse(w, http.StatusBadRequest, "yaml_content is required")
			return
		}
		content = result.YAMLContent
	}

	jdRec, jdData, err := s.loadProjectFile(ctx, project.ID, db.FileTypeJobDescription)
	if err != nil {
		s.failure(w, "Failed to load job description", err)
		return
	}

	pdf, score, err := s.scoreYAML(ctx, content, ats.File{Name: jdRec.FileName, Data: jdData})
	if err != nil {
		if pdf == nil {
			s.renderFailure(w, err)
			return
		}
		s.failure(w, "Failed to calculate ATS score", err)
		return
	}

	if err := s.deps.Store.SaveProjectResult(ctx, &db.ProjectResult{
		ProjectID:   project.ID,
		YAMLContent: content,
		ATSScore:    &score,
	}); err != nil {
		s.failure(w, "Failed to save project result", err)
		return
	}
	if err := s.storeProjectFile(ctx, project.ID, db.FileTypeRevampedPDF, "resume.pdf", jobdesc.ContentTypePDF, pdf); err != nil {
		s.logger.Warn("failed to store rendered resume", "project_id", project.ID, "error", err)
	}

	id := project.ID
	s.jsonResponse(w, http.StatusOK, types.ATSScoreResponse{ATSScore: score, ProjectID: &id})
}
