// Package htmlsanitize strips markup from free-text fields before they are
// stored. Group and session descriptions are plain text; anything that looks
// like HTML is reduced to its text content.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes every tag (and the bodies of script and style elements)
// and returns the trimmed text. Entities escaped by the policy are decoded
// again so apostrophes and ampersands survive unchanged.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains no tags at all.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
