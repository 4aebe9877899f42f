package resolver

import (
	"context"
	"math/rand/v2"

	"github.com/slipstream/mona/internal/metadata/tvdb"
	"github.com/slipstream/mona/internal/ranking"
	"github.com/slipstream/mona/internal/release"
)

// ResolveFanart returns every fanart item for the best catalog match.
func (r *Resolver) ResolveFanart(ctx context.Context, q release.Parsed) ([]tvdb.Artwork, bool, error) {
	return r.fanart.Do(ctx, func(ctx context.Context) ([]tvdb.Artwork, bool, error) {
		a := &attempt{}
		items, found, err := r.resolveFanart(ctx, a, q)
		return settle(a, items, found, err)
	}, q.FileName)
}

// RandomFanart resolves fanart and picks one item.
func (r *Resolver) RandomFanart(ctx context.Context, q release.Parsed) (Artwork, bool, error) {
	items, found, err := r.ResolveFanart(ctx, q)
	if err != nil {
		return Artwork{}, false, err
	}
	if !found {
		r.observe(KindFanart, "")
		return Artwork{}, false, nil
	}

	item, ok := r.PickFanart(items)
	if !ok {
		r.observe(KindFanart, "")
		return Artwork{}, false, nil
	}
	r.observe(KindFanart, SourceCatalog)
	return Artwork{URL: item.Image, Source: SourceCatalog}, true, nil
}

// PickFanart chooses one item uniformly at random.
func (r *Resolver) PickFanart(items []tvdb.Artwork) (tvdb.Artwork, bool) {
	if len(items) == 0 {
		return tvdb.Artwork{}, false
	}
	if r.rand == nil {
		return items[rand.IntN(len(items))], true
	}
	r.randMu.Lock()
	defer r.randMu.Unlock()
	return items[r.rand.IntN(len(items))], true
}

func (r *Resolver) resolveFanart(ctx context.Context, a *attempt, q release.Parsed) ([]tvdb.Artwork, bool, error) {
	sel, ok, err := r.bestCandidate(ctx, a, q)
	if err != nil || !ok {
		return nil, false, err
	}

	id, ok := parseID(sel.Candidate.ID)
	if !ok {
		return nil, false, nil
	}

	var items []tvdb.Artwork
	switch sel.Candidate.Type {
	case ranking.TypeSeries:
		artworks, err := r.catalog.GetSeriesArtworks(ctx, id, r.artwork.SeriesFanartType)
		if err != nil {
			return nil, false, r.downgrade(ctx, a, err, "Series artworks lookup failed", sel.Candidate.ID)
		}
		items = tvdb.FilterArtworks(artworks, r.artwork.SeriesFanartType)
	case ranking.TypeMovie:
		movie, err := r.catalog.GetMovieExtended(ctx, id)
		if err != nil {
			return nil, false, r.downgrade(ctx, a, err, "Extended movie lookup failed", sel.Candidate.ID)
		}
		items = tvdb.FilterArtworks(movie.Artworks, r.artwork.MovieFanartType)
	default:
		return nil, false, nil
	}

	if len(items) == 0 {
		return nil, false, nil
	}
	return items, true, nil
}
