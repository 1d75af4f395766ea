// Package htmlsanitize strips markup from free-text fields before they are
// stored. Names, addresses and notes are plain text everywhere they are shown.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes every tag (and the contents of script/style elements) and
// returns the remaining text unescaped and trimmed.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
