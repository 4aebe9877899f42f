// Package resolver resolves queries into artwork URLs. Each pipeline runs
// its stages strictly in order and memoizes the final result.
package resolver

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/slipstream/mona/internal/cache"
	"github.com/slipstream/mona/internal/config"
	"github.com/slipstream/mona/internal/metadata/tvdb"
	"github.com/slipstream/mona/internal/ranking"
	"github.com/slipstream/mona/internal/release"
)

// Source records which stage produced an artwork URL.
type Source string

const (
	SourceCatalog    Source = "catalog"
	SourceSeason     Source = "season"
	SourceWebCatalog Source = "webcatalog"
	SourceTorrent    Source = "torrent"
)

// Memoized function names, also used as cache kinds.
const (
	KindPoster  = "poster"
	KindFanart  = "fanart"
	KindTorrent = "torrent"
	KindArt     = "art"
)

// ErrUnknownKind is returned when invalidating an unknown cache kind.
var ErrUnknownKind = errors.New("unknown cache kind")

// Artwork is a resolved image URL.
type Artwork struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
}

// Catalog is the primary metadata catalog.
type Catalog interface {
	Search(ctx context.Context, query string) ([]tvdb.SearchResult, error)
	GetSeriesExtended(ctx context.Context, id int64) (*tvdb.SeriesExtended, error)
	GetSeasonExtended(ctx context.Context, id int64) (*tvdb.SeasonExtended, error)
	GetSeriesArtworks(ctx context.Context, id int64, artType int) ([]tvdb.Artwork, error)
	GetMovieExtended(ctx context.Context, id int64) (*tvdb.MovieExtended, error)
}

// PosterLookup is the secondary web catalog.
type PosterLookup interface {
	LookupPoster(ctx context.Context, name string) (string, bool, error)
}

// ImageExtractor pulls artwork out of a torrent description page.
type ImageExtractor interface {
	ExtractImage(ctx context.Context, pageURL string) (string, bool, error)
}

// Observer receives memoizer and resolution outcomes.
type Observer interface {
	cache.Observer
	ObserveResolution(kind, source string)
}

// Options configure a Resolver.
type Options struct {
	Cache    *cache.Cache
	CacheCfg config.CacheConfig
	Artwork  config.ArtworkConfig
	// Weights default to ranking.DefaultWeights when both blend weights
	// are zero.
	Weights  ranking.Weights
	Logger   zerolog.Logger
	Observer Observer
	// Rand drives fanart selection; nil uses the global source.
	Rand *rand.Rand
}

// Resolver runs the poster, fanart and torrent art pipelines.
type Resolver struct {
	catalog Catalog
	web     PosterLookup
	torrent ImageExtractor
	ranker  *ranking.Ranker
	artwork config.ArtworkConfig
	cache   *cache.Cache
	logger  zerolog.Logger

	observer Observer

	posters    *cache.Memoizer[Artwork]
	fanart     *cache.Memoizer[[]tvdb.Artwork]
	torrentArt *cache.Memoizer[Artwork]
	showArt    *cache.Memoizer[Artwork]

	randMu sync.Mutex
	rand   *rand.Rand
}

// New creates a resolver.
func New(catalog Catalog, web PosterLookup, torrent ImageExtractor, opts Options) *Resolver {
	c := opts.Cache
	if c == nil {
		c = cache.New(cache.Config{MaxItems: opts.CacheCfg.MaxItems})
	}

	var memoObserver cache.Observer
	if opts.Observer != nil {
		memoObserver = opts.Observer
	}

	memo := cache.MemoOptions{
		TTL:         opts.CacheCfg.TTL,
		Negative:    opts.CacheCfg.Negative,
		NegativeTTL: opts.CacheCfg.NegativeTTL,
		Observer:    memoObserver,
	}
	torrentMemo := memo
	torrentMemo.TTL = opts.CacheCfg.TorrentTTL

	weights := opts.Weights
	if weights.TitleWeight == 0 && weights.QualityWeight == 0 {
		weights = ranking.DefaultWeights()
	}

	return &Resolver{
		catalog:    catalog,
		web:        web,
		torrent:    torrent,
		ranker:     ranking.NewRanker(weights),
		artwork:    opts.Artwork,
		cache:      c,
		logger:     opts.Logger.With().Str("component", "resolver").Logger(),
		observer:   opts.Observer,
		posters:    cache.NewMemoizer[Artwork](c, KindPoster, memo),
		fanart:     cache.NewMemoizer[[]tvdb.Artwork](c, KindFanart, memo),
		torrentArt: cache.NewMemoizer[Artwork](c, KindTorrent, torrentMemo),
		showArt:    cache.NewMemoizer[Artwork](c, KindArt, memo),
		rand:       opts.Rand,
	}
}

// Forget drops the memoized result for one key of the given kind.
func (r *Resolver) Forget(kind, key string) error {
	switch kind {
	case KindPoster:
		r.posters.Forget(key)
	case KindFanart:
		r.fanart.Forget(key)
	case KindTorrent:
		r.torrentArt.Forget(key)
	case KindArt:
		r.showArt.Forget(key)
	default:
		return ErrUnknownKind
	}
	return nil
}

// ClearCache drops every cached entry.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

// bestCandidate searches with the raw file name, then "title (year)", then
// the bare title, and ranks the first non-empty result set against the
// string that produced it.
func (r *Resolver) bestCandidate(ctx context.Context, a *attempt, q release.Parsed) (ranking.Selection, bool, error) {
	var queries []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			queries = append(queries, s)
		}
	}

	add(q.FileName)
	if search, ok := q.SearchString(); ok {
		add(search)
		if q.Year > 0 {
			add(q.Title)
		}
	}

	for _, query := range queries {
		results, err := r.catalog.Search(ctx, query)
		if err != nil {
			if err := r.downgrade(ctx, a, err, "Catalog search failed", query); err != nil {
				return ranking.Selection{}, false, err
			}
			continue
		}
		if len(results) == 0 {
			r.logger.Debug().Str("query", query).Msg("No catalog results")
			continue
		}

		sel, ok := r.ranker.Rank(tvdb.Candidates(results), query)
		if ok {
			r.logger.Debug().
				Str("query", query).
				Str("id", sel.Candidate.ID).
				Str("name", sel.Candidate.Name).
				Float64("score", sel.Score.Total).
				Msg("Selected catalog candidate")
			return sel, true, nil
		}
	}

	return ranking.Selection{}, false, nil
}

// attempt tracks one execution of a pipeline.
type attempt struct {
	// degraded is set once a stage failure other than not-found was
	// absorbed. Such a result answers the caller but is not cached.
	degraded bool
}

// settle marks a degraded result as uncacheable.
func settle[T any](a *attempt, value T, found bool, err error) (T, bool, error) {
	if err == nil && a.degraded {
		return value, found, cache.ErrNoStore
	}
	return value, found, err
}

// downgrade turns a stage failure into absence. Only the caller's own
// context ending stops the chain; a client timeout on a live context is an
// ordinary failure.
func (r *Resolver) downgrade(ctx context.Context, a *attempt, err error, msg, subject string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, tvdb.ErrNotFound) {
		r.logger.Debug().Err(err).Str("subject", subject).Msg(msg)
		return nil
	}
	a.degraded = true
	r.logger.Warn().Err(err).Str("subject", subject).Msg(msg)
	return nil
}

func (r *Resolver) observe(kind string, source Source) {
	if r.observer != nil {
		r.observer.ObserveResolution(kind, string(source))
	}
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
