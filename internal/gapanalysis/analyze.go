// Package gapanalysis compares a resume with a job description and builds
// an upskilling report.
package gapanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/resume-revamp/internal/jobdesc"
	"github.com/jonathan/resume-revamp/internal/llm"
	"github.com/jonathan/resume-revamp/internal/prompts"
	"github.com/jonathan/resume-revamp/internal/schemas"
	"golang.org/x/sync/errgroup"
)

// NoGapsMessage replaces the plan and project sections when nothing is missing.
const NoGapsMessage = "Every skill in the job description already appears in the resume."

// Generator is the subset of llm.Client used here.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateWithFiles(ctx context.Context, prompt string, files []llm.File, tier llm.ModelTier) (string, error)
}

// Error wraps a failed analysis step.
type Error struct {
	Step  string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gap analysis %s failed: %v", e.Step, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Analyzer runs the gap table, then the plan and project suggestions in
// parallel.
type Analyzer struct {
	llm    Generator
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(gen Generator, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{llm: gen, logger: logger, now: time.Now}
}

// Analyze builds the report for a resume PDF and a job description.
func (a *Analyzer) Analyze(ctx context.Context, resumePDF []byte, jd *jobdesc.Document, jobRole string) (*Report, error) {
	if len(resumePDF) == 0 {
		return nil, &Error{Step: "input", Cause: fmt.Errorf("resume PDF is required")}
	}
	if jd == nil {
		return nil, &Error{Step: "input", Cause: jobdesc.ErrEmpty}
	}

	table, err := a.gapTable(ctx, resumePDF, jd)
	if err != nil {
		return nil, err
	}

	report := &Report{JobRole: jobRole, Table: *table, GeneratedAt: a.now().UTC()}
	missing := table.Missing()
	if len(missing) == 0 {
		report.Plan = NoGapsMessage
		report.Projects = NoGapsMessage
		return report, nil
	}

	role := jobRole
	if role == "" {
		role = "the target role"
	}
	data := map[string]string{
		"JobRole":       role,
		"MissingSkills": "- " + strings.Join(missing, "\n- "),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		plan, err := a.generate(gctx, "upskilling_plan", data)
		report.Plan = plan
		return err
	})
	g.Go(func() error {
		projects, err := a.generate(gctx, "project_ideas", data)
		report.Projects = projects
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Info("gap analysis complete", "skills", len(table.Skills), "missing", len(missing))
	return report, nil
}

func (a *Analyzer) gapTable(ctx context.Context, resumePDF []byte, jd *jobdesc.Document) (*Table, error) {
	template, err := prompts.Get(prompts.GapAnalysisFile, "gap_table")
	if err != nil {
		return nil, &Error{Step: "gap table", Cause: err}
	}
	jdText := jd.Text
	files := []llm.File{{MIMEType: jobdesc.ContentTypePDF, Data: resumePDF}}
	if jd.IsPDF() {
		jdText = "(attached as a PDF after the resume)"
		files = append(files, llm.File{MIMEType: jobdesc.ContentTypePDF, Data: jd.Data})
	}
	prompt := prompts.Format(template, map[string]string{"JobDescription": jdText})

	raw, err := a.llm.GenerateWithFiles(ctx, prompt, files, llm.TierStandard)
	if err != nil {
		return nil, &Error{Step: "gap table", Cause: err}
	}
	content := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.GapAnalysis, content); err != nil {
		return nil, &Error{Step: "gap table", Cause: err}
	}

	var table Table
	if err := json.Unmarshal([]byte(content), &table); err != nil {
		return nil, &Error{Step: "gap table", Cause: fmt.Errorf("failed to unmarshal JSON: %w", err)}
	}
	return &table, nil
}

func (a *Analyzer) generate(ctx context.Context, key string, data map[string]string) (string, error) {
	template, err := prompts.Get(prompts.GapAnalysisFile, key)
	if err != nil {
		return "", &Error{Step: key, Cause: err}
	}
	out, err := a.llm.GenerateContent(ctx, prompts.Format(template, data), llm.TierStandard)
	if err != nil {
		return "", &Error{Step: key, Cause: err}
	}
	return strings.TrimSpace(out), nil
}
