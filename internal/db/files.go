package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveProjectFile records a stored file, replacing any previous file of the
// same type for the project.
func (db *DB) SaveProjectFile(ctx context.Context, f *ProjectFile) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO project_files (project_id, file_type, file_name, storage_key, content_type, size_bytes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (project_id, file_type) DO UPDATE SET
		   file_name = EXCLUDED.file_name,
		   storage_key = EXCLUDED.storage_key,
		   content_type = EXCLUDED.content_type,
		   size_bytes = EXCLUDED.size_bytes,
		   created_at = NOW()
		 RETURNING id, created_at`,
		f.ProjectID, f.FileType, f.FileName, f.StorageKey, f.ContentType, f.SizeBytes,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save project file %s: %w", f.FileType, err)
	}
	return nil
}

// GetProjectFile returns the project's file of the given type, or nil.
func (db *DB) GetProjectFile(ctx context.Context, projectID uuid.UUID, fileType string) (*ProjectFile, error) {
	var f ProjectFile
	err := db.pool.QueryRow(ctx,
		`SELECT id, project_id, file_type, file_name, storage_key, content_type, size_bytes, created_at
		 FROM project_files WHERE project_id = $1 AND file_type = $2`,
		projectID, fileType,
	).Scan(&f.ID, &f.ProjectID, &f.FileType, &f.FileName, &f.StorageKey, &f.ContentType, &f.SizeBytes, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project file %s: %w", fileType, err)
	}
	return &f, nil
}

// SaveGapAnalysis creates or replaces a project's gap analysis.
func (db *DB) SaveGapAnalysis(ctx context.Context, g *GapAnalysis) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO gap_analyses (project_id, report_markdown, missing_skills)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (project_id) DO UPDATE SET
		   report_markdown = EXCLUDED.report_markdown,
		   missing_skills = EXCLUDED.missing_skills,
		   created_at = NOW()
		 RETURNING id, created_at`,
		g.ProjectID, g.ReportMarkdown, g.MissingSkills,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save gap analysis: %w", err)
	}
	return nil
}

// GetGapAnalysis returns a project's gap analysis, or nil.
func (db *DB) GetGapAnalysis(ctx context.Context, projectID uuid.UUID) (*GapAnalysis, error) {
	var g GapAnalysis
	err := db.pool.QueryRow(ctx,
		`SELECT id, project_id, report_markdown, missing_skills, created_at
		 FROM gap_analyses WHERE project_id = $1`,
		projectID,
	).Scan(&g.ID, &g.ProjectID, &g.ReportMarkdown, &g.MissingSkills, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gap analysis: %w", err)
	}
	return &g, nil
}
