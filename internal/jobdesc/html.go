package jobdesc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var noiseSelector = strings.Join([]string{
	"nav", "footer", "header", "script", "style", "noscript", "iframe", "form",
	".ad", ".advertisement", ".sidebar", ".cookie-banner", ".popup",
	"[role='navigation']", "[aria-hidden='true']",
}, ", ")

// ContentSelectors are tried in order to find the posting body.
var ContentSelectors = []string{
	".job-description",
	"#job-description",
	".job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"#content .section-wrapper",
	"main",
	"article",
	".content",
	"#content",
}

// ExtractText parses HTML, drops navigation and boilerplate and returns the
// text of the first matching content selector, or of the body.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(noiseSelector).Remove()

	content := doc.Find("body")
	for _, selector := range ContentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	// block elements end lines so list items do not run together
	content.Find("p, li, h1, h2, h3, h4, h5, h6, br, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	content.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})

	return CleanText(content.Text()), nil
}
