package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/dashboard"
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
	"github.com/jonathan/resume-revamp/internal/revamp"
	"github.com/jonathan/resume-revamp/internal/server/middleware"
	"github.com/jonathan/resume-revamp/internal/types"
)

// revampForm reads the text fields of a revamp request. Authenticated
// callers may omit contact fields that their saved profile provides.
func (s *Server) revampForm(r *http.Request, userID uuid.UUID) (*types.RevampForm, error) {
	form := &types.RevampForm{
		Location:      formString(r, "location"),
		Email:         formString(r, "email"),
		Phone:         formString(r, "phone"),
		LinkedIn:      formString(r, "linkedin"),
		GitHub:        formString(r, "github"),
		JobRole:       formString(r, "jobRole"),
		TargetCompany: formString(r, "targetCompany"),
	}

	if userID != uuid.Nil {
		profile, err := s.deps.Store.GetProfile(r.Context(), userID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			fill(&form.Location, profile.Location)
			fill(&form.Email, profile.Email)
			fill(&form.Phone, profile.Phone)
			fill(&form.LinkedIn, profile.LinkedIn)
			fill(&form.GitHub, profile.GitHub)
		}
	}

	if err := form.Validate(); err != nil {
		return nil, toValidationError(err)
	}
	return form, nil
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// revampJob tracks the persisted project of an authenticated revamp.
type revampJob struct {
	s       *Server
	project *db.Project
}

func (j *revampJob) setStatus(ctx context.Context, status dashboard.Status) error {
	if j.project == nil {
		return nil
	}
	if err := j.s.deps.Store.UpdateProjectStatus(ctx, j.project.ID, string(status)); err != nil {
		return err
	}
	j.project.Status = string(status)
	return nil
}

// fail marks the project failed even when the request was cancelled.
func (j *revampJob) fail(ctx context.Context, cause error) {
	if j.project == nil {
		return
	}
	if err := j.setStatus(context.WithoutCancel(ctx), dashboard.StatusFailed); err != nil {
		j.s.logger.Error("failed to mark project failed", "project_id", j.project.ID, "error", err, "cause", cause)
	}
}

func (j *revampJob) projectID() *uuid.UUID {
	if j.project == nil {
		return nil
	}
	id := j.project.ID
	return &id
}

// handleRevampExisting revamps an uploaded resume for a job description.
// Signed-in callers get a persisted project; anonymous callers only get
// the generated YAML back.
func (s *Server) handleRevampExisting(w http.ResponseWriter, r *http.Request) {
	if s.deps.Reviser == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "resume revamp is not configured")
		return
	}
	if !s.parseMultipart(w, r) {
		return
	}
	ctx := r.Context()
	userID, _ := middleware.GetUserID(r)

	form, err := s.revampForm(r, userID)
	if err != nil {
		s.failure(w, "Invalid request", err)
		return
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

	job := &revampJob{s: s}
	if userID != uuid.Nil {
		if err := s.createRevampProject(ctx, job, userID, form, resume, jd); err != nil {
			job.fail(ctx, err)
			s.failure(w, "Failed to create project", err)
			return
		}
	}

	if err := job.setStatus(ctx, dashboard.StatusProcessing); err != nil {
		job.fail(ctx, err)
		s.failure(w, "Failed to update project", err)
		return
	}

	req := &revamp.Request{
		ResumePDF:      resume.Data,
		JobRole:        form.JobRole,
		TargetCompany:  form.TargetCompany,
		JobDescription: jd,
		Contact: revamp.Contact{
			Location: form.Location,
			Email:    form.Email,
			Phone:    form.Phone,
			LinkedIn: form.LinkedIn,
			GitHub:   form.GitHub,
		},
	}
	if s.deps.Scorer != nil {
		req.Keywords = s.deps.Scorer.Keywords(ctx, atsFile(jd))
	}

	content, err := s.deps.Reviser.Revamp(ctx, req)
	if err != nil {
		job.fail(ctx, err)
		s.failure(w, "Failed to revamp resume", err)
		return
	}

	// A missing score does not fail the revamp.
	var score *float64
	pdf, value, err := s.scoreYAML(ctx, content, atsFile(jd))
	if err != nil {
		s.logger.Warn("revamped resume was not scored", "error", err)
	} else {
		score = &value
	}

	if job.project != nil {
		if err := s.finishRevampProject(ctx, job, content, score, pdf); err != nil {
			job.fail(ctx, err)
			s.failure(w, "Failed to save project result", err)
			return
		}
	}

	s.logger.Info("revamp finished", "project_id", job.projectID(), "job_role", form.JobRole, "scored", score != nil)
	s.jsonResponse(w, http.StatusOK, types.RevampResponse{
		YAMLContent: content,
		ATSScore:    score,
		ProjectID:   job.projectID(),
		Status:      string(dashboard.StatusCompleted),
	})
}

// createRevampProject records the project and its uploaded files.
func (s *Server) createRevampProject(ctx context.Context, job *revampJob, userID uuid.UUID, form *types.RevampForm, resume *upload, jd *jobdesc.Document) error {
	var company *string
	if form.TargetCompany != "" {
		company = &form.TargetCompany
	}
	project, err := s.deps.Store.CreateProject(ctx, &db.ProjectCreateInput{
		UserID:        userID,
		JobRole:       form.JobRole,
		TargetCompany: company,
	})
	if err != nil {
		return err
	}
	job.project = project

	if err := s.storeProjectFile(ctx, project.ID, db.FileTypeOriginalResume, resume.Name, resume.ContentType, resume.Data); err != nil {
		return err
	}
	if err := s.storeProjectFile(ctx, project.ID, db.FileTypeJobDescription, jd.Name, jd.ContentType, jd.Data); err != nil {
		return err
	}
	return job.setStatus(ctx, dashboard.StatusFilesUploaded)
}

// finishRevampProject saves the result and the rendered PDF and completes
// the project.
func (s *Server) finishRevampProject(ctx context.Context, job *revampJob, content string, score *float64, pdf []byte) error {
	id := job.project.ID
	if err := s.deps.Store.SaveProjectResult(ctx, &db.ProjectResult{
		ProjectID:   id,
		YAMLContent: content,
		ATSScore:    score,
	}); err != nil {
		return err
	}
	if len(pdf) > 0 {
		if err := s.storeProjectFile(ctx, id, db.FileTypeRevampedPDF, "resume.pdf", jobdesc.ContentTypePDF, pdf); err != nil {
			s.logger.Warn("failed to store rendered resume", "project_id", id, "error", err)
		}
	}
	if err := job.setStatus(ctx, dashboard.StatusCompleted); err != nil {
		return fmt.Errorf("failed to complete project: %w", err)
	}
	return nil
}
