package revamp

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-revamp/internal/llm"
	"gopkg.in/yaml.v3"
)

// DefaultTheme is added when the document has no design block.
const DefaultTheme = "classic"

// top-level keys RenderCV understands besides cv
var rootKeys = map[string]bool{
	"cv":                true,
	"design":            true,
	"locale":            true,
	"locale_catalog":    true,
	"rendercv_settings": true,
}

// cv keys that are header fields rather than sections
var headerKeys = map[string]bool{
	"name":            true,
	"location":        true,
	"email":           true,
	"phone":           true,
	"website":         true,
	"photo":           true,
	"social_networks": true,
	"sections":        true,
	"linkedin":        true,
	"github":          true,
}

// NormalizeSections cleans model output into a RenderCV document: code
// fences are stripped, sections left at the root or directly under cv move
// into cv.sections and a design block is added when missing.
func NormalizeSections(raw string) (string, error) {
	content := llm.StripCodeFence(raw)
	if content == "" {
		return "", fmt.Errorf("empty resume YAML")
	}
	doc, err := parseDocument(content)
	if err != nil {
		return "", err
	}
	root := doc.Content[0]

	cv, err := ensureMapping(root, "cv")
	if err != nil {
		return "", err
	}
	sections, err := ensureMapping(cv, "sections")
	if err != nil {
		return "", err
	}

	for _, key := range keysOf(root) {
		if !rootKeys[key] {
			moveSection(sections, key, remove(root, key))
		}
	}
	for _, key := range keysOf(cv) {
		if !headerKeys[key] {
			moveSection(sections, key, remove(cv, key))
		}
	}
	if len(sections.Content) == 0 {
		remove(cv, "sections")
	}
	if len(cv.Content) == 0 {
		return "", fmt.Errorf("resume YAML has no cv content")
	}

	if lookup(root, "design") == nil {
		design := mapping()
		design.Content = append(design.Content, scalar("theme"), scalar(DefaultTheme))
		set(root, "design", design)
	}

	return encodeDocument(doc)
}

// moveSection keeps an existing section of the same name.
func moveSection(sections *yaml.Node, key string, value *yaml.Node) {
	if value == nil || lookup(sections, key) != nil {
		return
	}
	set(sections, strings.TrimSpace(key), value)
}

func keysOf(m *yaml.Node) []string {
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys
}
