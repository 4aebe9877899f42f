// Package tvdb is a client for the TVDB v4 API.
package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/mona/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("TVDB API key is not configured")
	ErrNotFound      = errors.New("TVDB record not found")
	ErrAPIError      = errors.New("TVDB API error")
	ErrAuthFailed    = errors.New("TVDB authentication failed")
	ErrRateLimited   = errors.New("TVDB API rate limited")
)

// Observer receives the outcome of every outbound request.
type Observer interface {
	ObserveUpstream(upstream, outcome string)
}

// Client is a TVDB API client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     config.TVDBConfig
	logger     zerolog.Logger
	observer   Observer
	now        func() time.Time

	// Token management
	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a new TVDB client.
func NewClient(cfg config.TVDBConfig, logger zerolog.Logger) *Client {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tvdb").Logger(),
		now:    time.Now,
	}
}

// SetObserver installs an observer for request outcomes.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tvdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// authenticate logs in when there is no token or the token has expired.
func (c *Client) authenticate(ctx context.Context) error {
	c.mu.RLock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return nil
	}

	loginURL := fmt.Sprintf("%s/login", c.config.BaseURL)
	body, err := json.Marshal(LoginRequest{APIKey: c.config.APIKey, Pin: c.config.Pin})
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("error")
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe("auth_failed")
		c.logger.Error().Int("status", resp.StatusCode).Msg("TVDB authentication failed")
		return ErrAuthFailed
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if loginResp.Data.Token == "" {
		c.observe("auth_failed")
		return fmt.Errorf("%w: empty token", ErrAuthFailed)
	}

	c.observe("login")
	c.token = loginResp.Data.Token
	// Tokens are valid for a month; refresh well before that.
	c.tokenExpiry = c.now().Add(c.config.TokenTTL)

	c.logger.Debug().Msg("TVDB authentication successful")
	return nil
}

// Search runs a catalog search across all record types.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)

	var response SearchResponse
	if err := c.get(ctx, "/search", params, &response); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(response.Data)).
		Msg("Search completed")

	return response.Data, nil
}

// GetSeriesExtended gets the extended series record, including seasons.
func (c *Client) GetSeriesExtended(ctx context.Context, id int64) (*SeriesExtended, error) {
	var response SeriesResponse
	if err := c.get(ctx, fmt.Sprintf("/series/%d/extended", id), nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// GetSeasonExtended gets the extended season record, including artwork.
func (c *Client) GetSeasonExtended(ctx context.Context, id int64) (*SeasonExtended, error) {
	var response SeasonResponse
	if err := c.get(ctx, fmt.Sprintf("/seasons/%d/extended", id), nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// GetSeriesArtworks lists a series' artworks, filtered server-side by type
// when artType is non-zero.
func (c *Client) GetSeriesArtworks(ctx context.Context, id int64, artType int) ([]Artwork, error) {
	params := url.Values{}
	if artType != 0 {
		params.Set("type", strconv.Itoa(artType))
	}

	var response ArtworksResponse
	if err := c.get(ctx, fmt.Sprintf("/series/%d/artworks", id), params, &response); err != nil {
		return nil, err
	}
	return response.Data.Artworks, nil
}

// GetMovieExtended gets the extended movie record, including artworks.
func (c *Client) GetMovieExtended(ctx context.Context, id int64) (*MovieExtended, error) {
	var response MovieResponse
	if err := c.get(ctx, fmt.Sprintf("/movies/%d/extended", id), nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	if err := c.authenticate(ctx); err != nil {
		return err
	}

	return c.doRequest(ctx, c.config.BaseURL+path, params, result)
}

// doRequest performs an HTTP GET request with authentication.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("error")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusNotFound:
			c.observe("not_found")
			return ErrNotFound
		case http.StatusUnauthorized:
			c.observe("unauthorized")
			// Token might be expired, clear it
			c.mu.Lock()
			if c.token == token {
				c.token = ""
			}
			c.mu.Unlock()
			return fmt.Errorf("%w: unauthorized", ErrAPIError)
		case http.StatusTooManyRequests:
			c.observe("rate_limited")
			return ErrRateLimited
		default:
			c.observe("error")
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		c.observe("error")
		return fmt.Errorf("failed to decode response: %w", err)
	}

	c.observe("ok")
	return nil
}

func (c *Client) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveUpstream("tvdb", outcome)
	}
}
