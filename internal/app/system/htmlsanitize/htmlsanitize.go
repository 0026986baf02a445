// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Free-text fields (reasons, appeal details, feedback, notes) are reduced to
// plain text. Lesson content keeps a safe subset of formatting HTML.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
)

func policies() {
	strict = bluemonday.StrictPolicy()

	rich = bluemonday.UGCPolicy()
	rich.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td", "pre", "code")
	rich.AddTargetBlankToFullyQualifiedLinks(true)
}

// PlainText strips every tag and trims surrounding whitespace. The result
// is stored as text, so entities are decoded. Decoding and stripping repeat
// until the text stops changing, so entity-encoded markup cannot survive.
func PlainText(s string) string {
	once.Do(policies)
	s = strings.TrimSpace(s)
	for i := 0; i < maxPlainPasses; i++ {
		if s == "" {
			return ""
		}
		out := strings.TrimSpace(html.UnescapeString(strict.Sanitize(html.UnescapeString(s))))
		if out == s {
			return out
		}
		s = out
	}
	// Still changing: drop angle brackets outright.
	return strings.TrimSpace(angleStripper.Replace(s))
}

// Rich sanitizes HTML content, keeping formatting and dropping scripts,
// event handlers and javascript: URLs.
func Rich(s string) string {
	once.Do(policies)
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return rich.Sanitize(s)
}

const maxPlainPasses = 5

var angleStripper = strings.NewReplacer("<", "", ">", "")
