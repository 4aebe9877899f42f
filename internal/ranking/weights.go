package ranking

import "github.com/slipstream/mona/internal/config"

// Weights are the tunable constants of the scoring policy. Title relevance
// is scored 0..ExactMatch, catalog quality 0..(HasImage+OriginLanguage+Series+Marker),
// and the two are blended with TitleWeight and QualityWeight.
type Weights struct {
	TitleWeight   float64
	QualityWeight float64

	ExactMatch     float64
	SlugMatch      float64
	Contains       float64
	WordOverlapMax float64

	HasImage       float64
	OriginLanguage float64
	Series         float64
	Marker         float64

	OriginLanguages []string
	MarkerTerms     []string
}

// DefaultWeights returns the stock scoring constants.
func DefaultWeights() Weights {
	return WeightsFromConfig(config.Default().Ranking)
}

// WeightsFromConfig maps the ranking config section onto Weights.
func WeightsFromConfig(cfg config.RankingConfig) Weights {
	return Weights{
		TitleWeight:     cfg.TitleWeight,
		QualityWeight:   cfg.QualityWeight,
		ExactMatch:      cfg.ExactMatch,
		SlugMatch:       cfg.SlugMatch,
		Contains:        cfg.Contains,
		WordOverlapMax:  cfg.WordOverlapMax,
		HasImage:        cfg.HasImage,
		OriginLanguage:  cfg.OriginLanguage,
		Series:          cfg.Series,
		Marker:          cfg.Marker,
		OriginLanguages: cfg.OriginLanguages,
		MarkerTerms:     cfg.MarkerTerms,
	}
}
