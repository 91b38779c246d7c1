// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
)

var (
	// Matches anything unsafe in a stored file name.
	unsafeFilenameRe = regexp.MustCompile(`[^a-z0-9._-]+`)
	// Matches multiple consecutive underscores.
	multipleUnderscoreRe = regexp.MustCompile(`_+`)
)

// SanitizeFilename converts arbitrary text into a safe file name component.
//
// Rules:
//  1. Trim whitespace and lowercase
//  2. Replace unsafe characters with underscores
//  3. Collapse runs of underscores
//  4. Trim leading/trailing underscores
//
// Examples:
//
//	"Kind of Blue"     → "kind_of_blue"
//	"AC/DC"            → "ac_dc"
//	"  Round Midnight" → "round_midnight"
func SanitizeFilename(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = unsafeFilenameRe.ReplaceAllString(s, "_")
	s = multipleUnderscoreRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// CoverFilename builds the name for a stored album cover: the sanitized
// artist and album titles, a caller-supplied unique token so two covers
// for the same album never share a path, and the image extension.
// Unknown segments collapse to "unknown" so the name is never empty.
func CoverFilename(artist, album, token, ext string) string {
	a := SanitizeFilename(artist)
	if a == "" {
		a = "unknown"
	}
	b := SanitizeFilename(album)
	if b == "" {
		b = "unknown"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return "cover_" + a + "_" + b + "_" + token + ext
}
