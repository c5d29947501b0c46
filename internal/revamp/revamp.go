// Package revamp rewrites an existing resume into ATS-optimized RenderCV
// YAML for a target role.
package revamp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
	"github.com/jonathan/resume-revamp/internal/llm"
	"github.com/jonathan/resume-revamp/internal/prompts"
)

// Generator is the LLM call the reviser needs.
type Generator interface {
	GenerateWithFiles(ctx context.Context, prompt string, files []llm.File, tier llm.ModelTier) (string, error)
}

// Error wraps a failed revamp.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("revamp failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("revamp failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Request is one revamp job.
type Request struct {
	ResumePDF      []byte
	JobRole        string
	TargetCompany  string
	JobDescription *jobdesc.Document
	Keywords       ats.KeywordReport
	Contact        Contact
}

// Reviser produces RenderCV YAML from a resume and a job description.
type Reviser struct {
	llm    Generator
	tier   llm.ModelTier
	logger *slog.Logger
}

// NewReviser creates a Reviser using the standard model tier.
func NewReviser(gen Generator, logger *slog.Logger) *Reviser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reviser{llm: gen, tier: llm.TierStandard, logger: logger}
}

// Revamp asks the model for a revamped resume, normalizes the sections and
// injects the contact block. A failed injection is logged and the
// normalized YAML is returned without contact details.
func (r *Reviser) Revamp(ctx context.Context, req *Request) (string, error) {
	if len(req.ResumePDF) == 0 {
		return "", &Error{Message: "resume PDF is required"}
	}
	if req.JobDescription == nil {
		return "", &Error{Message: "job description is required"}
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return "", &Error{Message: "failed to build prompt", Cause: err}
	}

	files := []llm.File{{MIMEType: jobdesc.ContentTypePDF, Data: req.ResumePDF}}
	if req.JobDescription.IsPDF() {
		files = append(files, llm.File{MIMEType: jobdesc.ContentTypePDF, Data: req.JobDescription.Data})
	}

	raw, err := r.llm.GenerateWithFiles(ctx, prompt, files, r.tier)
	if err != nil {
		return "", &Error{Message: "model call failed", Cause: err}
	}

	content, err := NormalizeSections(raw)
	if err != nil {
		return "", &Error{Message: "model returned unusable YAML", Cause: err}
	}

	injected, err := InjectContactInfo(content, req.Contact)
	if err != nil {
		r.logger.Warn("contact injection failed, returning YAML without contact info", "error", err)
		return content, nil
	}
	r.logger.Info("resume revamped", "job_role", req.JobRole, "bytes", len(injected))
	return injected, nil
}

func buildPrompt(req *Request) (string, error) {
	system, err := prompts.Get(prompts.RevampFile, "system")
	if err != nil {
		return "", err
	}
	user, err := prompts.Get(prompts.RevampFile, "user")
	if err != nil {
		return "", err
	}
	template, err := prompts.Template(prompts.TemplateFile)
	if err != nil {
		return "", err
	}
	keywords, err := json.MarshalIndent(req.Keywords, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode keywords: %w", err)
	}

	jd := req.JobDescription.Text
	if req.JobDescription.IsPDF() {
		jd = "(attached as the second PDF)"
	}
	company := strings.TrimSpace(req.TargetCompany)
	if company == "" {
		company = "not specified"
	}

	return system + "\n\n" + prompts.Format(user, map[string]string{
		"JobRole":        req.JobRole,
		"TargetCompany":  company,
		"Template":       template,
		"JobDescription": jd,
		"Keywords":       string(keywords),
	}), nil
}
