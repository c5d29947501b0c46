package jobdesc

import (
	"regexp"
	"strings"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes line endings, collapses runs of spaces inside lines
// and keeps at most one blank line between paragraphs. Bullet and heading
// markers are kept.
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}

	result := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}
