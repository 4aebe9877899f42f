// Package scrape extracts artwork from HTML pages: the web show catalog and
// torrent description pages.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const userAgent = "mona/1.0"

// Observer receives the outcome of every outbound request.
type Observer interface {
	ObserveUpstream(upstream, outcome string)
}

type fetcher struct {
	httpClient *http.Client
	upstream   string
	observer   Observer
	logger     zerolog.Logger
}

func newFetcher(upstream string, timeoutSeconds int, logger zerolog.Logger) fetcher {
	return fetcher{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		upstream: upstream,
		logger:   logger.With().Str("component", upstream).Logger(),
	}
}

// fetchDocument GETs pageURL and parses the body. Redirects are followed.
// A non-2xx status yields a nil document and no error.
func (f *fetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.observe("error")
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.observe("not_found")
		return nil, resp.StatusCode, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		f.observe("error")
		if ctx.Err() != nil {
			return nil, resp.StatusCode, ctx.Err()
		}
		return nil, resp.StatusCode, fmt.Errorf("failed to parse HTML: %w", err)
	}

	f.observe("ok")
	return doc, resp.StatusCode, nil
}

func (f *fetcher) observe(outcome string) {
	if f.observer != nil {
		f.observer.ObserveUpstream(f.upstream, outcome)
	}
}
