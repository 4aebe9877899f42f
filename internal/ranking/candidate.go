package ranking

import "strings"

// Candidate type values reported by the catalog.
const (
	TypeSeries = "series"
	TypeMovie  = "movie"
)

// Candidate is one catalog search hit, reduced to what scoring needs.
type Candidate struct {
	ID              string
	Name            string
	Type            string
	PrimaryLanguage string
	ImageURL        string
	Aliases         []string
	Slug            string
	Translations    map[string]string

	// Document is the full record as text. Marker terms are searched here.
	Document string
}

// EnglishName returns the English translation of the name, if any.
func (c Candidate) EnglishName() string {
	if c.Translations == nil {
		return ""
	}
	return c.Translations["eng"]
}

// HasUsableImage reports whether the image URL is present and not the
// catalog's "missing" placeholder.
func (c Candidate) HasUsableImage() bool {
	return UsableImage(c.ImageURL)
}

// UsableImage reports whether an image URL is present and not a placeholder.
func UsableImage(u string) bool {
	return u != "" && !strings.Contains(u, "missing")
}
