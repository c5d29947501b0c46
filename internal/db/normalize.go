package db

import (
	"github.com/jonathan/resume-revamp/internal/dashboard"
)

// ToDashboard converts a stored project into the normalized dashboard record.
func (p ProjectWithResult) ToDashboard() dashboard.Project {
	out := dashboard.Project{
		ID:               p.ID,
		UserID:           p.UserID,
		JobRole:          p.JobRole,
		TargetCompany:    p.TargetCompany,
		Status:           dashboard.Status(p.Status),
		HasGapAnalysis:   p.HasGapAnalysis,
		GapAnalysisFiles: []string(p.GapAnalysisFiles),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Result != nil {
		out.Result = &dashboard.Result{
			ProjectID:   p.Result.ProjectID,
			YAMLContent: p.Result.YAMLContent,
			ATSScore:    p.Result.ATSScore,
			GeneratedAt: p.Result.GeneratedAt,
		}
	}
	return out
}

// ToDashboardProjects converts stored projects, preserving order.
func ToDashboardProjects(rows []ProjectWithResult) []dashboard.Project {
	out := make([]dashboard.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDashboard())
	}
	return out
}
