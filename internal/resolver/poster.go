package resolver

import (
	"context"
	"strconv"

	"github.com/slipstream/mona/internal/metadata/tvdb"
	"github.com/slipstream/mona/internal/ranking"
	"github.com/slipstream/mona/internal/release"
)

// ResolvePoster returns the poster for a query. A season poster is
// preferred over the series image, and the web catalog is consulted only
// when the catalog has no usable image.
func (r *Resolver) ResolvePoster(ctx context.Context, q release.Parsed) (Artwork, bool, error) {
	art, found, err := r.posters.Do(ctx, func(ctx context.Context) (Artwork, bool, error) {
		a := &attempt{}
		art, found, err := r.resolvePoster(ctx, a, q)
		return settle(a, art, found, err)
	}, q.FileName)
	if err == nil {
		r.observe(KindPoster, art.Source)
	}
	return art, found, err
}

func (r *Resolver) resolvePoster(ctx context.Context, a *attempt, q release.Parsed) (Artwork, bool, error) {
	sel, ok, err := r.bestCandidate(ctx, a, q)
	if err != nil {
		return Artwork{}, false, err
	}

	if ok {
		art, found, err := r.catalogPoster(ctx, a, q, sel.Candidate)
		if err != nil || found {
			return art, found, err
		}
	}

	name := q.Title
	if name == "" {
		name = q.FileName
	}
	url, found, err := r.web.LookupPoster(ctx, name)
	if err != nil {
		if err := r.downgrade(ctx, a, err, "Web catalog lookup failed", name); err != nil {
			return Artwork{}, false, err
		}
		return Artwork{}, false, nil
	}
	if !found {
		return Artwork{}, false, nil
	}
	return Artwork{URL: url, Source: SourceWebCatalog}, true, nil
}

func (r *Resolver) catalogPoster(ctx context.Context, a *attempt, q release.Parsed, cand ranking.Candidate) (Artwork, bool, error) {
	baseline := ""
	if cand.HasUsableImage() {
		baseline = cand.ImageURL
	}

	id, hasID := parseID(cand.ID)
	season, hasSeason := q.Season()

	var series *tvdb.SeriesExtended
	if hasID && (baseline == "" || hasSeason) {
		s, err := r.catalog.GetSeriesExtended(ctx, id)
		if err != nil {
			if err := r.downgrade(ctx, a, err, "Extended series lookup failed", cand.ID); err != nil {
				return Artwork{}, false, err
			}
		} else {
			series = s
		}
	}

	if baseline == "" && series != nil && ranking.UsableImage(series.Image) {
		baseline = series.Image
	}

	if hasSeason && series != nil {
		url, err := r.seasonPoster(ctx, a, series, season)
		if err != nil {
			return Artwork{}, false, err
		}
		if url != "" {
			return Artwork{URL: url, Source: SourceSeason}, true, nil
		}
	}

	if baseline == "" {
		return Artwork{}, false, nil
	}
	return Artwork{URL: baseline, Source: SourceCatalog}, true, nil
}

func (r *Resolver) seasonPoster(ctx context.Context, a *attempt, series *tvdb.SeriesExtended, number int) (string, error) {
	season, ok := series.SeasonNumber(number)
	if !ok || season.ID <= 0 {
		return "", nil
	}

	detail, err := r.catalog.GetSeasonExtended(ctx, season.ID)
	if err != nil {
		return "", r.downgrade(ctx, a, err, "Extended season lookup failed", strconv.FormatInt(season.ID, 10))
	}

	for _, art := range detail.Artwork {
		if art.Type == r.artwork.SeasonPosterType && art.Image != "" {
			return art.Image, nil
		}
	}
	return "", nil
}

// ResolveShowArt looks a show name up on the web catalog only.
func (r *Resolver) ResolveShowArt(ctx context.Context, name string) (Artwork, bool, error) {
	art, found, err := r.showArt.Do(ctx, func(ctx context.Context) (Artwork, bool, error) {
		a := &attempt{}
		url, found, err := r.web.LookupPoster(ctx, name)
		if err != nil {
			return settle(a, Artwork{}, false, r.downgrade(ctx, a, err, "Web catalog lookup failed", name))
		}
		if !found {
			return Artwork{}, false, nil
		}
		return Artwork{URL: url, Source: SourceWebCatalog}, true, nil
	}, name)
	if err == nil {
		r.observe(KindArt, art.Source)
	}
	return art, found, err
}
