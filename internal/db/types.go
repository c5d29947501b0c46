package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Project file types
const (
	FileTypeOriginalResume = "original_resume"
	FileTypeJobDescription = "job_description"
	FileTypeRevampedPDF    = "revamped_resume"
	FileTypeGapAnalysis    = "gap_analysis"
)

// User is an account that can sign in.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the contact details injected into generated resumes.
type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	Location  string    `json:"location"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	LinkedIn  string    `json:"linkedin"`
	GitHub    string    `json:"github"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project is one resume revamp for a job role.
type Project struct {
	ID               uuid.UUID   `json:"id"`
	UserID           uuid.UUID   `json:"user_id"`
	JobRole          string      `json:"job_role"`
	TargetCompany    *string     `json:"target_company"`
	Status           string      `json:"status"`
	HasGapAnalysis   bool        `json:"has_gap_analysis"`
	GapAnalysisFiles StringArray `json:"gap_analysis_files"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// ProjectCreateInput is the input for CreateProject.
type ProjectCreateInput struct {
	UserID        uuid.UUID
	JobRole       string
	TargetCompany *string
}

// ProjectResult is the generated resume of a project.
type ProjectResult struct {
	ProjectID   uuid.UUID `json:"project_id"`
	YAMLContent string    `json:"yaml_content"`
	ATSScore    *float64  `json:"ats_score"`
	GeneratedAt time.Time `json:"generated_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectWithResult is a project joined with its result, if any.
type ProjectWithResult struct {
	Project
	Result *ProjectResult
}

// ProjectFile records an uploaded or generated file kept in object storage.
type ProjectFile struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	FileType    string    `json:"file_type"`
	FileName    string    `json:"file_name"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// GapAnalysis is the stored skill-gap report of a project.
type GapAnalysis struct {
	ID             uuid.UUID   `json:"id"`
	ProjectID      uuid.UUID   `json:"project_id"`
	ReportMarkdown string      `json:"report_markdown"`
	MissingSkills  StringArray `json:"missing_skills"`
	CreatedAt      time.Time   `json:"created_at"`
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = []string{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("unsupported source type for StringArray")
	}
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}
