package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/slipstream/mona/internal/config"
	"github.com/slipstream/mona/internal/normalize"
)

// WebCatalog looks up show posters on the web catalog's show pages.
type WebCatalog struct {
	fetcher
	baseURL *url.URL
}

// NewWebCatalog creates a web catalog client.
func NewWebCatalog(cfg config.WebCatalogConfig, logger zerolog.Logger) (*WebCatalog, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid web catalog base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid web catalog base URL %q: scheme and host required", cfg.BaseURL)
	}

	return &WebCatalog{
		fetcher: newFetcher("webcatalog", cfg.Timeout, logger),
		baseURL: base,
	}, nil
}

// SetObserver installs an observer for request outcomes.
func (w *WebCatalog) SetObserver(o Observer) {
	w.observer = o
}

// LookupPoster finds the show page for name and returns its first image.
// The slugified name is tried in full, then with trailing words dropped one
// at a time until a page answers 2xx.
func (w *WebCatalog) LookupPoster(ctx context.Context, name string) (string, bool, error) {
	slug := normalize.Slugify(name)
	if slug == "" {
		return "", false, nil
	}
	words := strings.Split(slug, "-")

	// Stops at one word; the empty slug would only hit the catalog's index page.
	for len(words) > 0 {
		candidate := strings.Join(words, "-")
		pageURL := w.baseURL.JoinPath("shows", candidate).String()

		doc, status, err := w.fetchDocument(ctx, pageURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", false, ctxErr
			}
			w.logger.Debug().Err(err).Str("slug", candidate).Msg("Show page request failed")
		} else if doc != nil {
			src, ok := doc.Find("img[src]").First().Attr("src")
			if !ok || strings.TrimSpace(src) == "" {
				w.logger.Debug().Str("slug", candidate).Msg("Show page has no image")
				return "", false, nil
			}
			return w.absolute(src), true, nil
		} else {
			w.logger.Trace().Int("status", status).Str("slug", candidate).Msg("Show page not found")
		}

		words = words[:len(words)-1]
	}

	return "", false, nil
}

// absolute resolves src against the catalog host. Absolute URLs are
// returned unchanged.
func (w *WebCatalog) absolute(src string) string {
	src = strings.TrimSpace(src)
	ref, err := url.Parse(src)
	if err != nil {
		return w.baseURL.Scheme + "://" + w.baseURL.Host + "/" + strings.TrimLeft(src, "/")
	}
	return w.baseURL.ResolveReference(ref).String()
}
