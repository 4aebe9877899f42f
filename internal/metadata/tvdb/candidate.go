package tvdb

import (
	"strconv"
	"strings"

	"github.com/slipstream/mona/internal/ranking"
)

// Candidate converts the search hit into the ranker's view of it.
func (r SearchResult) Candidate() ranking.Candidate {
	id := ""
	if n, ok := r.RecordID(); ok {
		id = strconv.FormatInt(n, 10)
	}

	typ := r.Type
	if typ == "" {
		typ = r.PrimaryType
	}

	return ranking.Candidate{
		ID:              id,
		Name:            r.Name,
		Type:            typ,
		PrimaryLanguage: r.PrimaryLanguage,
		ImageURL:        r.ImageURL,
		Aliases:         r.Aliases,
		Slug:            r.Slug,
		Translations:    r.Translations,
		Document:        strings.ToLower(string(r.Raw)),
	}
}

// Candidates converts a result set, preserving order.
func Candidates(results []SearchResult) []ranking.Candidate {
	out := make([]ranking.Candidate, len(results))
	for i, r := range results {
		out[i] = r.Candidate()
	}
	return out
}
