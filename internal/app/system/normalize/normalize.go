// Package normalize canonicalises user-supplied strings before they are
// stored or compared.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// QueryParam trims a query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Username derives a profile username from an email address.
// The full normalized address is used so usernames stay unique.
func Username(email string) string {
	return Email(email)
}

// Slug turns a display name into a stable identifier:
// folded (lowercase, no diacritics), with runs of other characters
// replaced by a single underscore.
//
//	"Nossa Senhora da Paz" -> "nossa_senhora_da_paz"
func Slug(name string) string {
	folded := text.Fold(name)
	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
