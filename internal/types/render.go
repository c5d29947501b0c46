package types

import "github.com/google/uuid"

// Watch actions
const (
	WatchStart  = "start"
	WatchStop   = "stop"
	WatchUpdate = "update"
)

// RenderRequest is the body of POST /render-resume.
type RenderRequest struct {
	YAMLContent string `json:"yamlContent" validate:"required"`
	Theme       string `json:"theme,omitempty" validate:"omitempty,max=100,excludesall=/\\"`
}

// WatchRequest is the body of POST /render-resume-watch. The YAML content
// is optional for stop.
type WatchRequest struct {
	Action      string `json:"action" validate:"required,oneof=start stop update"`
	YAMLContent string `json:"yamlContent" validate:"required_unless=Action stop"`
}

// WatchResponse reports the outcome of a watch action.
type WatchResponse struct {
	Status    string `json:"status"`
	ProcessID *int   `json:"processId,omitempty"`
	OutputDir string `json:"outputDir,omitempty"`
}

// ATSScoreResponse is returned by the scoring endpoints.
type ATSScoreResponse struct {
	ATSScore  float64    `json:"ats_score"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
}

// RevampResponse is returned by POST /revamp-existing.
type RevampResponse struct {
	YAMLContent string     `json:"yaml_content"`
	ATSScore    *float64   `json:"ats_score"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	Status      string     `json:"status"`
}

// ProjectYAMLResponse is returned by GET /project/{id}/yaml.
type ProjectYAMLResponse struct {
	ProjectID   uuid.UUID `json:"project_id"`
	JobRole     string    `json:"job_role"`
	YAMLContent string    `json:"yaml_content"`
	ATSScore    *float64  `json:"ats_score"`
}

// ReviewResponse is returned by POST /review.
type ReviewResponse struct {
	Report        string     `json:"report"`
	MissingSkills []string   `json:"missing_skills"`
	ProjectID     *uuid.UUID `json:"project_id,omitempty"`
}

// Validate validates the RenderRequest using the validator.
func (r *RenderRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the WatchRequest using the validator.
func (r *WatchRequest) Validate() error {
	return validate.Struct(r)
}

// RevampForm holds the text fields of the POST /revamp-existing form.
type RevampForm struct {
	Location      string `validate:"max=200"`
	Email         string `validate:"required,email"`
	Phone         string `validate:"required,max=50"`
	LinkedIn      string `validate:"required,max=300"`
	GitHub        string `validate:"max=300"`
	JobRole       string `validate:"required,max=200"`
	TargetCompany string `validate:"max=200"`
}

// Validate validates the RevampForm using the validator.
func (f *RevampForm) Validate() error {
	return validate.Struct(f)
}
