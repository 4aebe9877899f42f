// Package normalize turns free-form show titles into catalog-friendly forms.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	bracketGroupRe = regexp.MustCompile(`\[.*?\]`)
	nonSlugRe      = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

	// Characters removed outright before dash replacement, so "Frieren's"
	// becomes "frierens" rather than "frieren-s".
	dropReplacer = strings.NewReplacer(
		"(", "",
		")", "",
		"'", "",
		"’", "",
		"‘", "",
		"â€™", "", // UTF-8 right quote decoded as cp1252
		"+", "",
		"@", "",
	)
)

// Slugify lowercases text, removes bracketed tag groups and a fixed set of
// punctuation, and collapses everything else outside [a-z0-9_] into single
// dashes.
func Slugify(text string) string {
	text = strings.ToLower(text)
	text = bracketGroupRe.ReplaceAllString(text, "")
	text = dropReplacer.Replace(text)
	text = nonSlugRe.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}

// SearchString builds the catalog search string for a title and optional
// year. It reports false when the title is empty or whitespace-only.
func SearchString(title string, year int) (string, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", false
	}
	if year > 0 {
		return title + " (" + strconv.Itoa(year) + ")", true
	}
	return title, true
}
