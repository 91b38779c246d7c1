// Package normalize provides text normalization for catalog matching.
//
// Artist and album names arrive from FLAC tags, MusicBrainz responses, and
// scraped HTML with inconsistent case, accents, and stray null bytes. The
// helpers here produce the canonical form used for equality checks, so that
// "Björk", "BJORK" and "bjork " all resolve to the same catalog entity.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean removes null bytes and trims surrounding whitespace. Some tag
// parsers include null terminators in strings, which break SQLite and JSON.
func Clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Key returns the canonical matching key for a name: cleaned, NFKD
// decomposed with combining marks stripped, and lowercased. Two names with
// the same Key refer to the same entity for find-or-create purposes.
func Key(s string) string {
	s = Clean(s)
	decomposed := norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// EqualFold reports whether two names match under Key normalization.
func EqualFold(a, b string) bool {
	return Key(a) == Key(b)
}
