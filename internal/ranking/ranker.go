// Package ranking scores catalog search hits against a query and selects
// the best one.
package ranking

import (
	"regexp"
	"slices"
	"sort"
	"strings"
)

var trailingYearRe = regexp.MustCompile(`-\d+$`)

// Score is the breakdown of a candidate's composite score.
type Score struct {
	Title   float64 `json:"title"`
	Quality float64 `json:"quality"`
	Total   float64 `json:"total"`
}

// Selection is the candidate chosen for a query.
type Selection struct {
	Candidate Candidate
	Index     int // position in the catalog's result order
	Score     Score
}

// Ranker scores candidates. It holds no mutable state and is safe for
// concurrent use.
type Ranker struct {
	weights Weights
}

// NewRanker creates a ranker with the given weights.
func NewRanker(w Weights) *Ranker {
	return &Ranker{weights: w}
}

// Rank returns the highest scoring candidate. Ties go to the candidate the
// catalog listed first. It reports false for an empty list.
func (r *Ranker) Rank(candidates []Candidate, query string) (Selection, bool) {
	sorted := r.Sorted(candidates, query)
	if len(sorted) == 0 {
		return Selection{}, false
	}
	return sorted[0], true
}

// Sorted returns every candidate in descending score order, stable with
// respect to the input order.
func (r *Ranker) Sorted(candidates []Candidate, query string) []Selection {
	out := make([]Selection, len(candidates))
	for i, c := range candidates {
		out[i] = Selection{Candidate: c, Index: i, Score: r.Score(c, query)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.Total > out[j].Score.Total
	})
	return out
}

// Score computes the composite score of one candidate.
func (r *Ranker) Score(c Candidate, query string) Score {
	title := r.TitleRelevance(c, query)
	quality := r.CatalogQuality(c)
	return Score{
		Title:   title,
		Quality: quality,
		Total:   r.weights.TitleWeight*title + r.weights.QualityWeight*quality,
	}
}

// TitleRelevance scores how well the candidate's names match the query.
func (r *Ranker) TitleRelevance(c Candidate, query string) float64 {
	if strings.TrimSpace(query) == "" {
		return 0
	}

	q := strings.ToLower(query)
	eng := strings.ToLower(c.EnglishName())
	name := strings.ToLower(c.Name)
	slug := strings.ToLower(c.Slug)
	aliases := make([]string, len(c.Aliases))
	for i, a := range c.Aliases {
		aliases[i] = strings.ToLower(a)
	}

	if eng == q || name == q || slices.Contains(aliases, q) {
		return r.weights.ExactMatch
	}

	dashed := strings.ReplaceAll(q, " ", "-")
	if slug != "" && trailingYearRe.ReplaceAllString(slug, "") == dashed {
		return r.weights.SlugMatch
	}

	if strings.Contains(eng, q) || strings.Contains(name, q) || strings.Contains(slug, dashed) {
		return r.weights.Contains
	}
	for _, a := range aliases {
		if strings.Contains(a, q) {
			return r.weights.Contains
		}
	}

	var words []string
	for _, w := range strings.Fields(q) {
		if len(w) > 1 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return 0
	}

	parts := append([]string{eng, name, strings.ReplaceAll(slug, "-", " ")}, aliases...)
	haystack := strings.Join(parts, " ")

	matched := 0
	for _, w := range words {
		if strings.Contains(haystack, w) {
			matched++
		}
	}
	return float64(matched) / float64(len(words)) * r.weights.WordOverlapMax
}

// CatalogQuality scores record-level signals that favour anime catalog
// entries with artwork.
func (r *Ranker) CatalogQuality(c Candidate) float64 {
	var score float64
	if c.HasUsableImage() {
		score += r.weights.HasImage
	}
	if slices.Contains(r.weights.OriginLanguages, c.PrimaryLanguage) {
		score += r.weights.OriginLanguage
	}
	if c.Type == TypeSeries {
		score += r.weights.Series
	}
	doc := strings.ToLower(c.Document)
	for _, term := range r.weights.MarkerTerms {
		if strings.Contains(doc, term) {
			score += r.weights.Marker
			break
		}
	}
	return score
}
