package dashboard

import (
	"fmt"
	"log/slog"
	"sort"
)

// Empty returns the zero view used when aggregation fails.
func Empty(page, pageSize int) View {
	return View{
		Stats: Stats{
			ATSChange:     "0%",
			ResumesChange: "0",
		},
		RecentProjects:  []ProjectSummary{},
		ATSByJobRole:    []RoleScore{},
		CurrentPage:     page,
		ProjectsPerPage: pageSize,
	}
}

// Build aggregates the user's projects into a dashboard view. Records must be
// ordered most recent first. Stats cover every record; the project list and the
// per-role ranking cover only the requested page.
//
// Build never panics: an internal failure yields Empty(page, pageSize).
func Build(records []Project, page, pageSize int) (view View) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dashboard aggregation failed",
				"component", "dashboard",
				"panic", fmt.Sprint(r),
				"page", page,
				"page_size", pageSize)
			view = Empty(page, pageSize)
		}
	}()

	if pageSize < 1 {
		return Empty(page, pageSize)
	}

	window := pageWindow(records, page, pageSize)

	summaries := make([]ProjectSummary, 0, len(window))
	for _, p := range window {
		summaries = append(summaries, summarize(p))
	}

	return View{
		Stats:           computeStats(records),
		RecentProjects:  summaries,
		ATSByJobRole:    rankByRole(window),
		TotalProjects:   len(records),
		CurrentPage:     page,
		TotalPages:      (len(records) + pageSize - 1) / pageSize,
		ProjectsPerPage: pageSize,
	}
}

func pageWindow(records []Project, page, pageSize int) []Project {
	totalPages := (len(records) + pageSize - 1) / pageSize
	if page < 1 || page > totalPages {
		return nil
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(records))
	return records[start:end]
}

func computeStats(records []Project) Stats {
	stats := Stats{
		ATSChange:      "0%",
		ResumesCreated: len(records),
	}

	var scored []float64
	completed := 0
	for i := range records {
		p := records[i]
		if p.Status == StatusCompleted {
			completed++
		}
		score, ok := p.Score()
		if !ok {
			continue
		}
		if len(scored) == 0 || score > stats.HighestATSScore {
			stats.HighestATSScore = score
			id := p.ID
			stats.HighestProjectID = &id
		}
		scored = append(scored, score)
	}

	// records are newest first, so the change is latest minus the one before it
	if len(scored) >= 2 {
		stats.ATSChange = fmt.Sprintf("%+.0f%%", scored[0]-scored[1])
	}
	stats.ResumesChange = fmt.Sprintf("+%d", completed)
	return stats
}

type roleKey struct {
	role    string
	company string
}

func rankByRole(window []Project) []RoleScore {
	rows := make([]RoleScore, 0, len(window))
	index := make(map[roleKey]int)

	for _, p := range window {
		if p.JobRole == "" {
			continue
		}
		score, ok := p.Score()
		if !ok {
			continue
		}
		row := RoleScore{
			JobRole:       p.JobRole,
			TargetCompany: p.CompanyLabel(),
			ATSScore:      score,
			ProjectID:     p.ID,
		}
		key := roleKey{role: row.JobRole, company: row.TargetCompany}
		if i, seen := index[key]; seen {
			if score > rows[i].ATSScore {
				rows[i] = row
			}
			continue
		}
		index[key] = len(rows)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ATSScore > rows[j].ATSScore
	})
	return rows
}

func summarize(p Project) ProjectSummary {
	files := p.GapAnalysisFiles
	if files == nil {
		files = []string{}
	}
	s := ProjectSummary{
		ID:               p.ID,
		UserID:           p.UserID,
		JobRole:          p.JobRole,
		TargetCompany:    p.TargetCompany,
		Status:           p.Status,
		HasGapAnalysis:   p.HasGapAnalysis,
		GapAnalysisFiles: files,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Result != nil {
		if score, ok := p.Score(); ok {
			s.ATSScore = &score
		}
		yaml := p.Result.YAMLContent
		s.YAMLContent = &yaml
	}
	return s
}
