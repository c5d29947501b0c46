package dashboard

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func project(role string, company *string, score *float64, status Status) Project {
	id := uuid.New()
	p := Project{
		ID:            id,
		UserID:        uuid.New(),
		JobRole:       role,
		TargetCompany: company,
		Status:        status,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if score != nil {
		p.Result = &Result{ProjectID: id, YAMLContent: "cv: {}", ATSScore: score}
	}
	return p
}

func scorePtr(f float64) *float64 { return &f }

func TestBuild_GroupsByRoleAndCompany(t *testing.T) {
	records := []Project{
		project("SWE", strPtr("Acme"), scorePtr(70), StatusCompleted),
		project("SWE", strPtr("Acme"), scorePtr(85), StatusCompleted),
		project("PM", nil, scorePtr(60), StatusProcessing),
	}

	view := Build(records, 1, 5)

	require.Len(t, view.ATSByJobRole, 2)
	assert.Equal(t, RoleScore{JobRole: "SWE", TargetCompany: "Acme", ATSScore: 85, ProjectID: records[1].ID}, view.ATSByJobRole[0])
	assert.Equal(t, RoleScore{JobRole: "PM", TargetCompany: NoCompany, ATSScore: 60, ProjectID: records[2].ID}, view.ATSByJobRole[1])

	assert.Equal(t, 85.0, view.Stats.HighestATSScore)
	require.NotNil(t, view.Stats.HighestProjectID)
	assert.Equal(t, records[1].ID, *view.Stats.HighestProjectID)
	assert.Equal(t, 3, view.Stats.ResumesCreated)
	assert.Equal(t, "+2", view.Stats.ResumesChange)
	assert.Equal(t, "-15%", view.Stats.ATSChange)
	assert.Equal(t, 3, view.TotalProjects)
	assert.Equal(t, 1, view.TotalPages)
	assert.Len(t, view.RecentProjects, 3)
}

func TestBuild_Pagination(t *testing.T) {
	records := make([]Project, 0, 12)
	for i := 0; i < 12; i++ {
		records = append(records, project("SWE", strPtr("Acme"), scorePtr(float64(i)), StatusCompleted))
	}

	view := Build(records, 3, 5)
	assert.Equal(t, 3, view.TotalPages)
	assert.Equal(t, 3, view.CurrentPage)
	assert.Equal(t, 5, view.ProjectsPerPage)
	require.Len(t, view.RecentProjects, 2)
	assert.Equal(t, records[10].ID, view.RecentProjects[0].ID)
	assert.Equal(t, records[11].ID, view.RecentProjects[1].ID)

	// stats still cover every record
	assert.Equal(t, 11.0, view.Stats.HighestATSScore)
	assert.Equal(t, 12, view.Stats.ResumesCreated)

	// ranking covers only the page
	require.Len(t, view.ATSByJobRole, 1)
	assert.Equal(t, 11.0, view.ATSByJobRole[0].ATSScore)
}

func TestBuild_PageOutOfRange(t *testing.T) {
	records := []Project{project("SWE", nil, scorePtr(50), StatusCompleted)}

	view := Build(records, 4, 5)
	assert.Empty(t, view.RecentProjects)
	assert.Empty(t, view.ATSByJobRole)
	assert.Equal(t, 1, view.TotalPages)
	assert.Equal(t, 50.0, view.Stats.HighestATSScore)
}

func TestBuild_NoScores(t *testing.T) {
	records := []Project{
		project("SWE", nil, nil, StatusPersonalInfo),
		project("", nil, nil, StatusFailed),
	}

	view := Build(records, 1, 5)
	assert.Equal(t, 0.0, view.Stats.HighestATSScore)
	assert.Nil(t, view.Stats.HighestProjectID)
	assert.Equal(t, "0%", view.Stats.ATSChange)
	assert.Equal(t, "+0", view.Stats.ResumesChange)
	assert.Empty(t, view.ATSByJobRole)
	require.Len(t, view.RecentProjects, 2)
	assert.Nil(t, view.RecentProjects[0].ATSScore)
	assert.Nil(t, view.RecentProjects[0].YAMLContent)
	assert.NotNil(t, view.RecentProjects[0].GapAnalysisFiles)
}

func TestBuild_EmptyInput(t *testing.T) {
	view := Build(nil, 1, 5)
	assert.Equal(t, 0, view.TotalProjects)
	assert.Equal(t, 0, view.TotalPages)
	assert.Empty(t, view.RecentProjects)
	assert.NotNil(t, view.RecentProjects)
	assert.NotNil(t, view.ATSByJobRole)
}

func TestBuild_TiesKeepFirst(t *testing.T) {
	records := []Project{
		project("SWE", strPtr("Acme"), scorePtr(80), StatusCompleted),
		project("SWE", strPtr("Acme"), scorePtr(80), StatusCompleted),
		project("Data", strPtr("Beta"), scorePtr(80), StatusCompleted),
	}

	view := Build(records, 1, 5)
	require.NotNil(t, view.Stats.HighestProjectID)
	assert.Equal(t, records[0].ID, *view.Stats.HighestProjectID)

	require.Len(t, view.ATSByJobRole, 2)
	assert.Equal(t, records[0].ID, view.ATSByJobRole[0].ProjectID)
	assert.Equal(t, "Data", view.ATSByJobRole[1].JobRole)
}

func TestBuild_SkipsUnusableRankingEntries(t *testing.T) {
	records := []Project{
		project("", strPtr("Acme"), scorePtr(99), StatusCompleted),
		project("SWE", strPtr(""), scorePtr(math.NaN()), StatusCompleted),
		project("SWE", strPtr(""), scorePtr(0), StatusCompleted),
	}

	view := Build(records, 1, 5)
	require.Len(t, view.ATSByJobRole, 1)
	assert.Equal(t, NoCompany, view.ATSByJobRole[0].TargetCompany)
	assert.Equal(t, 0.0, view.ATSByJobRole[0].ATSScore)

	// the role-less project still counts toward the maximum
	assert.Equal(t, 99.0, view.Stats.HighestATSScore)
	assert.Len(t, view.RecentProjects, 3)
}

func TestBuild_Deterministic(t *testing.T) {
	records := []Project{
		project("SWE", strPtr("Acme"), scorePtr(70), StatusCompleted),
		project("PM", nil, scorePtr(90), StatusCompleted),
	}
	assert.Equal(t, Build(records, 1, 1), Build(records, 1, 1))
}

func TestBuild_InvalidPageSize(t *testing.T) {
	view := Build([]Project{project("SWE", nil, scorePtr(1), StatusCompleted)}, 1, 0)
	assert.Equal(t, Empty(1, 0), view)
}
