// Package slug turns display names into URL-safe routing keys.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reValid    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate lowercases name, strips diacritics, collapses every run of
// characters outside [a-z0-9] into one hyphen and trims hyphens at both ends.
// The result may be empty. Uniqueness is the repository's concern.
func Generate(name string) string {
	s := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	s = reNonAlnum.ReplaceAllString(b.String(), "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s already has the shape Generate produces.
func Valid(s string) bool {
	return reValid.MatchString(s)
}
