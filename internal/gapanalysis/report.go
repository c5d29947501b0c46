package gapanalysis

import (
	"fmt"
	"strings"
	"time"
)

// SkillGap is one row of the gap table.
type SkillGap struct {
	Skill    string `json:"skill"`
	Category string `json:"category,omitempty"`
	Present  bool   `json:"present"`
	Evidence string `json:"evidence,omitempty"`
}

// Table compares job description skills with the resume.
type Table struct {
	Skills  []SkillGap `json:"skills"`
	Summary string     `json:"summary,omitempty"`
}

// Missing returns the skills not found in the resume, in table order.
func (t *Table) Missing() []string {
	missing := make([]string, 0, len(t.Skills))
	for _, s := range t.Skills {
		if !s.Present {
			missing = append(missing, s.Skill)
		}
	}
	return missing
}

// Report is the full review handed back to the user.
type Report struct {
	JobRole     string    `json:"job_role"`
	Table       Table     `json:"gap_table"`
	Plan        string    `json:"upskilling_plan"`
	Projects    string    `json:"project_ideas"`
	GeneratedAt time.Time `json:"generated_at"`
}

// MissingSkills is shorthand for r.Table.Missing().
func (r *Report) MissingSkills() []string {
	return r.Table.Missing()
}

// Markdown renders the report as a single document.
func (r *Report) Markdown() string {
	var sb strings.Builder

	title := "Resume Gap Analysis"
	if r.JobRole != "" {
		title += ": " + r.JobRole
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	if r.Table.Summary != "" {
		sb.WriteString(r.Table.Summary)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Gap Table\n\n")
	sb.WriteString("| Skill from JD | Present in Resume? | Gap Notes / How to Work on this Skill |\n")
	sb.WriteString("|---|---|---|\n")
	for _, s := range r.Table.Skills {
		present := "No"
		if s.Present {
			present = "Yes"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", cell(s.Skill), present, cell(s.Evidence))
	}

	sb.WriteString("\n## Upskilling Plan\n\n")
	sb.WriteString(strings.TrimSpace(r.Plan))
	sb.WriteString("\n\n## Project Ideas\n\n")
	sb.WriteString(strings.TrimSpace(r.Projects))
	sb.WriteString("\n")
	return sb.String()
}

// cell keeps table rows on one line.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}
