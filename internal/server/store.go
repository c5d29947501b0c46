package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/db"
)

// UserStore is the account storage used by UserService.
type UserStore interface {
	CreateUser(ctx context.Context, email, fullName, passwordHash string) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
}

// Store is the persistence the handlers need. *db.DB implements it.
type Store interface {
	UserStore

	GetProfile(ctx context.Context, userID uuid.UUID) (*db.Profile, error)
	UpsertProfile(ctx context.Context, p *db.Profile) (*db.Profile, error)

	CreateProject(ctx context.Context, input *db.ProjectCreateInput) (*db.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*db.Project, error)
	UpdateProjectStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkGapAnalysis(ctx context.Context, id uuid.UUID, files []string) error
	ListProjectsWithResults(ctx context.Context, userID uuid.UUID) ([]db.ProjectWithResult, error)

	SaveProjectResult(ctx context.Context, r *db.ProjectResult) error
	GetProjectResult(ctx context.Context, projectID uuid.UUID) (*db.ProjectResult, error)

	SaveProjectFile(ctx context.Context, f *db.ProjectFile) error
	GetProjectFile(ctx context.Context, projectID uuid.UUID, fileType string) (*db.ProjectFile, error)
	SaveGapAnalysis(ctx context.Context, g *db.GapAnalysis) error
}

var _ Store = (*db.DB)(nil)
