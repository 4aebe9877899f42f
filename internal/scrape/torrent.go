package scrape

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/slipstream/mona/internal/config"
)

var imageURLRe = regexp.MustCompile(`https?://[^\s"'<>]+?\.(?i:jpg|jpeg|png|gif)`)

// TorrentPage extracts artwork from torrent listing description pages.
type TorrentPage struct {
	fetcher
	allowedPrefixes []string
}

// NewTorrentPage creates a torrent page scraper.
func NewTorrentPage(cfg config.TorrentConfig, logger zerolog.Logger) *TorrentPage {
	return &TorrentPage{
		fetcher:         newFetcher("torrent", cfg.Timeout, logger),
		allowedPrefixes: cfg.AllowedPrefixes,
	}
}

// SetObserver installs an observer for request outcomes.
func (t *TorrentPage) SetObserver(o Observer) {
	t.observer = o
}

// AllowedURL reports whether pageURL starts with one of the permitted
// listing site prefixes.
func (t *TorrentPage) AllowedURL(pageURL string) bool {
	for _, prefix := range t.allowedPrefixes {
		if prefix != "" && strings.HasPrefix(pageURL, prefix) {
			return true
		}
	}
	return false
}

// ExtractImage returns the first image URL found in the page's torrent
// description. Only context cancellation is reported as an error; every
// other failure is a plain miss.
func (t *TorrentPage) ExtractImage(ctx context.Context, pageURL string) (string, bool, error) {
	doc, status, err := t.fetchDocument(ctx, pageURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		t.logger.Warn().Err(err).Str("url", pageURL).Msg("Torrent page request failed")
		return "", false, nil
	}
	if doc == nil {
		t.logger.Debug().Int("status", status).Str("url", pageURL).Msg("Torrent page not available")
		return "", false, nil
	}

	description := strings.TrimSpace(doc.Find("div#torrent-description").First().Text())
	if description == "" {
		return "", false, nil
	}

	match := imageURLRe.FindString(description)
	if match == "" {
		return "", false, nil
	}
	return match, true, nil
}
