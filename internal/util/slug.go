// Package util provides small string helpers shared across services.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a display name to the identifier of an app label.
//
//	"Everyone"          -> "everyone"
//	"Close Friends"     -> "close-friends"
//	"Café_Crew!"        -> "cafe-crew"
//	"  --weird  name--" -> "weird-name"
func Slugify(s string) string {
	// Decompose accents so "é" becomes "e" plus a combining mark we drop.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleDashes.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
