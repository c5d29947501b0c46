// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/dashboard"
	"github.com/jonathan/resume-revamp/internal/gapanalysis"
	"github.com/jonathan/resume-revamp/internal/rendering"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *score)
}

// PrintDashboard outputs the stats, per-role scores and project page of a dashboard view.
func (p *Printer) PrintDashboard(view dashboard.View) {
	var sb strings.Builder

	stats := view.Stats
	sb.WriteString(fmt.Sprintf("Resumes:       %d (%s completed)\n", stats.ResumesCreated, stats.ResumesChange))
	if stats.HighestProjectID != nil {
		sb.WriteString(fmt.Sprintf("Highest ATS:   %.1f\n", stats.HighestATSScore))
	} else {
		sb.WriteString("Highest ATS:   -\n")
	}
	sb.WriteString(fmt.Sprintf("Latest change: %s\n", stats.ATSChange))
	p.printBox("DASHBOARD", strings.TrimSuffix(sb.String(), "\n"))

	if len(view.ATSByJobRole) > 0 {
		sb.Reset()
		count := min(len(view.ATSByJobRole), maxItemsToShow)
		for i := 0; i < count; i++ {
			row := view.ATSByJobRole[i]
			sb.WriteString(fmt.Sprintf("%5.1f  %s @ %s\n", row.ATSScore, row.JobRole, row.TargetCompany))
		}
		if len(view.ATSByJobRole) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(view.ATSByJobRole)-maxItemsToShow))
		}
		p.printBox("ATS BY JOB ROLE", strings.TrimSuffix(sb.String(), "\n"))
	}

	sb.Reset()
	if len(view.RecentProjects) == 0 {
		sb.WriteString("No projects on this page\n")
	}
	for _, proj := range view.RecentProjects {
		company := dashboard.NoCompany
		if proj.TargetCompany != nil && *proj.TargetCompany != "" {
			company = *proj.TargetCompany
		}
		sb.WriteString(fmt.Sprintf("%s  %s @ %s\n", proj.ID.String()[:8], proj.JobRole, company))
		line := fmt.Sprintf("          %s  score %s", proj.Status, formatScore(proj.ATSScore))
		if proj.HasGapAnalysis {
			line += "  [gap analysis]"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(fmt.Sprintf("\nPage %d of %d (%d projects)", view.CurrentPage, view.TotalPages, view.TotalProjects))
	p.printBox("RECENT PROJECTS", sb.String())
}

// PrintKeywords outputs the keyword breakdown of a job description.
func (p *Printer) PrintKeywords(report ats.KeywordReport) {
	if report.IsEmpty() {
		return
	}

	var sb strings.Builder
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(title + ":\n")
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
		}
	}
	section("Required skills", report.RequiredSkills)
	section("Preferred skills", report.PreferredSkills)
	section("Keywords", report.Keywords)

	p.printBox("JOB DESCRIPTION KEYWORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGapSummary outputs the skills of a gap analysis with presence markers.
func (p *Printer) PrintGapSummary(report *gapanalysis.Report) {
	if report == nil || len(report.Table.Skills) == 0 {
		return
	}

	var sb strings.Builder
	missing := report.MissingSkills()
	sb.WriteString(fmt.Sprintf("%d of %d skills missing\n\n", len(missing), len(report.Table.Skills)))
	for _, s := range report.Table.Skills {
		mark := "✗"
		if s.Present {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, s.Skill))
	}

	title := "GAP ANALYSIS"
	if report.JobRole != "" {
		title += ": " + strings.ToUpper(report.JobRole)
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWatchStatus outputs the state of a watch session.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWatchStatus(key rendering.SessionKey, status rendering.Status) {
	if !status.Active || status.PID == nil {
		fmt.Fprintf(p.out, "watch %s: inactive\n", key)
		return
	}
	fmt.Fprintf(p.out, "watch %s: running (pid %d), output in %s\n", key, *status.PID, status.OutputDir)
}
