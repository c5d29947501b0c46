// Package dashboard builds the paginated project summary shown on a user's dashboard.
package dashboard

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle tag of a resume project.
type Status string

const (
	StatusPersonalInfo  Status = "personal_info"
	StatusFilesUploaded Status = "files_uploaded"
	StatusProcessing    Status = "processing"
	StatusCompleted     Status = "completed"
	StatusFailed        Status = "failed"
)

// NoCompany is the grouping label used when a project has no target company.
const NoCompany = "No Company"

// Result is the generated output of a project.
type Result struct {
	ProjectID   uuid.UUID
	YAMLContent string
	ATSScore    *float64
	GeneratedAt time.Time
}

// Project is a normalized project record. Storage-specific shapes are
// converted into this type before they reach Build.
type Project struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	JobRole          string
	TargetCompany    *string
	Status           Status
	HasGapAnalysis   bool
	GapAnalysisFiles []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Result           *Result
}

// Score returns the project's ATS score and whether it is usable.
// NaN and infinities count as absent.
func (p Project) Score() (float64, bool) {
	if p.Result == nil || p.Result.ATSScore == nil {
		return 0, false
	}
	s := *p.Result.ATSScore
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, false
	}
	return s, true
}

// CompanyLabel returns the target company or NoCompany when it is missing or blank.
func (p Project) CompanyLabel() string {
	if p.TargetCompany == nil || *p.TargetCompany == "" {
		return NoCompany
	}
	return *p.TargetCompany
}

// Stats summarizes every project of the user, not just the current page.
type Stats struct {
	HighestATSScore  float64    `json:"highest_ats_score"`
	HighestProjectID *uuid.UUID `json:"highest_project_id"`
	ATSChange        string     `json:"ats_change"`
	ResumesCreated   int        `json:"resumes_created"`
	ResumesChange    string     `json:"resumes_change"`
}

// RoleScore is one row of the per-role ranking.
type RoleScore struct {
	JobRole       string    `json:"job_role"`
	TargetCompany string    `json:"target_company"`
	ATSScore      float64   `json:"ats_score"`
	ProjectID     uuid.UUID `json:"project_id"`
}

// ProjectSummary is a project as listed on the dashboard, with the result's
// score and YAML hoisted up.
type ProjectSummary struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	JobRole          string    `json:"job_role"`
	TargetCompany    *string   `json:"target_company"`
	Status           Status    `json:"status"`
	ATSScore         *float64  `json:"ats_score"`
	YAMLContent      *string   `json:"yaml_content"`
	HasGapAnalysis   bool      `json:"has_gap_analysis"`
	GapAnalysisFiles []string  `json:"gap_analysis_files"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// View is the paginated dashboard response.
type View struct {
	Stats           Stats            `json:"stats"`
	RecentProjects  []ProjectSummary `json:"recent_projects"`
	ATSByJobRole    []RoleScore      `json:"ats_by_job_role"`
	TotalProjects   int              `json:"total_projects"`
	CurrentPage     int              `json:"current_page"`
	TotalPages      int              `json:"total_pages"`
	ProjectsPerPage int              `json:"projects_per_page"`
}
