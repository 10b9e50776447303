// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from free-text input fields
// (addresses, task descriptions, supplier names) before storage.
// Records are served back through a JSON API, so stored values are
// plain text with no HTML at all.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes every HTML tag from s and returns the unescaped plain
// text, trimmed of surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// List applies Text to every element, dropping entries that become
// empty once markup is removed.
func List(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if t := Text(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
