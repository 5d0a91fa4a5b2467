// Package sanitize cleans operator-entered text before it is stored and
// rendered on dashboards.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes tags, decodes entities and removes any tags the
// decoding revealed.
func StripHTML(s string) string {
	out := markupPattern.ReplaceAllString(s, "")
	out = html.UnescapeString(out)
	out = markupPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// Text strips markup and collapses runs of whitespace to a single space.
func Text(s string) string {
	return strings.Join(strings.Fields(StripHTML(s)), " ")
}

// TextPtr applies Text to an optional value. A value that is blank after
// cleaning becomes nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := Text(*s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
