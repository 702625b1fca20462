package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
var repeatedHyphens = regexp.MustCompile(`-+`)

// Slugify turns "Beyoncé & Jay Z" into "beyonce-jay-z", the shape used by profile urls
func Slugify(input string) string {
	ascii := removeDiacritics(input)
	lower := strings.ToLower(strings.TrimSpace(ascii))
	hyphenated := strings.ReplaceAll(lower, " ", "-")
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")
	normalized := repeatedHyphens.ReplaceAllString(cleaned, "-")

	return strings.Trim(normalized, "-")
}

// decompose then drop the combining marks
func removeDiacritics(input string) string {
	decomposed := norm.NFD.String(input)

	var builder strings.Builder
	builder.Grow(len(decomposed))

	for _, r := range decomposed {
		if r >= 0x0300 && r <= 0x036f {
			continue
		}
		builder.WriteRune(r)
	}

	return builder.String()
}
