package revamp

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Contact is the contact block written into cv. Empty fields are skipped.
type Contact struct {
	Location string
	Email    string
	Phone    string
	LinkedIn string
	GitHub   string
}

// InjectContactInfo writes contact into the cv mapping of a RenderCV
// document. LinkedIn becomes cv.website and GitHub becomes the single
// social network entry. Stray cv.linkedin and cv.github keys are dropped.
// On error the input is returned unchanged together with the error.
func InjectContactInfo(content string, c Contact) (string, error) {
	doc, err := parseDocument(content)
	if err != nil {
		return content, err
	}
	cv, err := ensureMapping(doc.Content[0], "cv")
	if err != nil {
		return content, err
	}

	for _, f := range []struct{ key, value string }{
		{"location", c.Location},
		{"email", c.Email},
		{"phone", c.Phone},
		{"website", c.LinkedIn},
	} {
		if v := strings.TrimSpace(f.value); v != "" {
			set(cv, f.key, scalar(v))
		}
	}

	if username := GitHubUsername(c.GitHub); username != "" {
		entry := mapping()
		entry.Content = append(entry.Content,
			scalar("network"), scalar("GitHub"),
			scalar("username"), scalar(username),
		)
		set(cv, "social_networks", &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{entry}})
	}

	remove(cv, "linkedin")
	remove(cv, "github")

	out, err := encodeDocument(doc)
	if err != nil {
		return content, err
	}
	return out, nil
}

// GitHubUsername strips the scheme, host and trailing slash from a GitHub
// profile URL. Plain usernames pass through.
func GitHubUsername(github string) string {
	u := strings.TrimSpace(github)
	for _, prefix := range []string{"https://", "http://", "www."} {
		u = strings.TrimPrefix(u, prefix)
	}
	u = strings.TrimPrefix(u, "github.com/")
	u = strings.TrimPrefix(u, "@")
	return strings.Trim(u, "/")
}
