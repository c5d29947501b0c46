package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const projectColumns = `p.id, p.user_id, p.job_role, p.target_company, p.status,
	p.has_gap_analysis, p.gap_analysis_files, p.created_at, p.updated_at`

func projectScanTargets(p *Project) []any {
	return []any{&p.ID, &p.UserID, &p.JobRole, &p.TargetCompany, &p.Status,
		&p.HasGapAnalysis, &p.GapAnalysisFiles, &p.CreatedAt, &p.UpdatedAt}
}

// CreateProject inserts a project in the personal_info state.
func (db *DB) CreateProject(ctx context.Context, input *ProjectCreateInput) (*Project, error) {
	var p Project
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resume_projects AS p (user_id, job_role, target_company, status)
		 VALUES ($1, $2, $3, 'personal_info')
		 RETURNING `+projectColumns,
		input.UserID, input.JobRole, input.TargetCompany,
	).Scan(projectScanTargets(&p)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &p, nil
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	err := db.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM resume_projects p WHERE p.id = $1`, id,
	).Scan(projectScanTargets(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// UpdateProjectStatus moves a project to a new lifecycle status.
func (db *DB) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE resume_projects SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project not found: %s", id)
	}
	return nil
}

// MarkGapAnalysis flags a project as having a gap analysis and records its files.
func (db *DB) MarkGapAnalysis(ctx context.Context, id uuid.UUID, files []string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE resume_projects
		 SET has_gap_analysis = TRUE, gap_analysis_files = $1, updated_at = NOW()
		 WHERE id = $2`,
		StringArray(files), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark gap analysis: %w", err)
	}
	return nil
}

// ListProjectsWithResults returns the user's projects, most recent first,
// each joined with its result when one exists.
func (db *DB) ListProjectsWithResults(ctx context.Context, userID uuid.UUID) ([]ProjectWithResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+projectColumns+`,
		        r.project_id, r.yaml_content, r.ats_score, r.generated_at, r.updated_at
		 FROM resume_projects p
		 LEFT JOIN project_results r ON r.project_id = p.id
		 WHERE p.user_id = $1
		 ORDER BY p.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectWithResult
	for rows.Next() {
		var (
			pr          ProjectWithResult
			resultID    *uuid.UUID
			yaml        *string
			score       *float64
			generatedAt *time.Time
			updatedAt   *time.Time
		)
		targets := append(projectScanTargets(&pr.Project), &resultID, &yaml, &score, &generatedAt, &updatedAt)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if resultID != nil {
			pr.Result = &ProjectResult{ProjectID: *resultID, ATSScore: score}
			if yaml != nil {
				pr.Result.YAMLContent = *yaml
			}
			if generatedAt != nil {
				pr.Result.GeneratedAt = *generatedAt
			}
			if updatedAt != nil {
				pr.Result.UpdatedAt = *updatedAt
			}
		}
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return out, nil
}

// SaveProjectResult creates or replaces the result of a project.
func (db *DB) SaveProjectResult(ctx context.Context, r *ProjectResult) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO project_results (project_id, yaml_content, ats_score)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (project_id) DO UPDATE SET
		   yaml_content = EXCLUDED.yaml_content,
		   ats_score = EXCLUDED.ats_score,
		   updated_at = NOW()`,
		r.ProjectID, r.YAMLContent, r.ATSScore,
	)
	if err != nil {
		return fmt.Errorf("failed to save project result: %w", err)
	}
	return nil
}

// GetProjectResult returns the result of a project, or nil if none exists.
func (db *DB) GetProjectResult(ctx context.Context, projectID uuid.UUID) (*ProjectResult, error) {
	var r ProjectResult
	err := db.pool.QueryRow(ctx,
		`SELECT project_id, yaml_content, ats_score, generated_at, updated_at
		 FROM project_results WHERE project_id = $1`,
		projectID,
	).Scan(&r.ProjectID, &r.YAMLContent, &r.ATSScore, &r.GeneratedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project result: %w", err)
	}
	return &r, nil
}

// UpdateATSScore sets the score of an existing result.
func (db *DB) UpdateATSScore(ctx context.Context, projectID uuid.UUID, score float64) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE project_results SET ats_score = $1, updated_at = NOW() WHERE project_id = $2`,
		score, projectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ATS score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project result not found: %s", projectID)
	}
	return nil
}
