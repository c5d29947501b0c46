package db

import (
	"context"
	"fmt"
	"log/slog"
)

// Migration is a named, idempotent schema change.
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the schema in the order it must be applied.
var Migrations = []Migration{
	{
		Name: "enable_pgcrypto",
		SQL:  `CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	},
	{
		Name: "create_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email         TEXT NOT NULL UNIQUE,
			full_name     TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "create_user_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS user_profiles (
			user_id    UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			location   TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			linkedin   TEXT NOT NULL DEFAULT '',
			github     TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "create_resume_projects",
		SQL: `CREATE TABLE IF NOT EXISTS resume_projects (
			id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id            UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			job_role           TEXT NOT NULL DEFAULT '',
			target_company     TEXT,
			status             TEXT NOT NULL DEFAULT 'personal_info',
			has_gap_analysis   BOOLEAN NOT NULL DEFAULT FALSE,
			gap_analysis_files JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "index_resume_projects_user_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_resume_projects_user_created ON resume_projects (user_id, created_at DESC)`,
	},
	{
		Name: "create_project_results",
		SQL: `CREATE TABLE IF NOT EXISTS project_results (
			project_id   UUID PRIMARY KEY REFERENCES resume_projects(id) ON DELETE CASCADE,
			yaml_content TEXT NOT NULL,
			ats_score    DOUBLE PRECISION,
			generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "create_project_files",
		SQL: `CREATE TABLE IF NOT EXISTS project_files (
			id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id   UUID NOT NULL REFERENCES resume_projects(id) ON DELETE CASCADE,
			file_type    TEXT NOT NULL,
			file_name    TEXT NOT NULL,
			storage_key  TEXT NOT NULL,
			content_type TEXT NOT NULL DEFAULT '',
			size_bytes   BIGINT NOT NULL DEFAULT 0,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (project_id, file_type)
		)`,
	},
	{
		Name: "create_gap_analyses",
		SQL: `CREATE TABLE IF NOT EXISTS gap_analyses (
			id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id      UUID NOT NULL UNIQUE REFERENCES resume_projects(id) ON DELETE CASCADE,
			report_markdown TEXT NOT NULL,
			missing_skills  JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
}

// Migrate applies every migration. Each one is idempotent, so running it
// against an up-to-date database is a no-op.
func (db *DB) Migrate(ctx context.Context) error {
	slog.Info("Starting database migrations", "count", len(Migrations))
	for _, m := range Migrations {
		if _, err := db.pool.Exec(ctx, m.SQL); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		slog.Debug("Migration applied", "name", m.Name)
	}
	slog.Info("All migrations completed successfully")
	return nil
}
