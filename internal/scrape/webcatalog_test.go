package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mona/internal/config"
)

type pathRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (p *pathRecorder) add(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
}

func (p *pathRecorder) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

func newTestWebCatalog(t *testing.T, server *httptest.Server) *WebCatalog {
	t.Helper()
	wc, err := NewWebCatalog(config.WebCatalogConfig{BaseURL: server.URL, Timeout: 5}, zerolog.Nop())
	require.NoError(t, err)
	return wc
}

func TestWebCatalog_ProgressiveTruncation(t *testing.T) {
	rec := &pathRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		if r.URL.Path == "/shows/alpha" {
			w.Write([]byte(`<html><body><img src="/wp-content/uploads/alpha.jpg"></body></html>`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	wc := newTestWebCatalog(t, server)
	got, ok, err := wc.LookupPoster(context.Background(), "alpha beta gamma")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, server.URL+"/wp-content/uploads/alpha.jpg", got)
	assert.Equal(t, []string{"/shows/alpha-beta-gamma", "/shows/alpha-beta", "/shows/alpha"}, rec.all())
}

func TestWebCatalog_AbsoluteImagePassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<img src="https://cdn.example.com/poster.png"><img src="/second.jpg">`))
	}))
	defer server.Close()

	wc := newTestWebCatalog(t, server)
	got, ok, err := wc.LookupPoster(context.Background(), "Frieren")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/poster.png", got)
}

func TestWebCatalog_PageWithoutImage(t *testing.T) {
	rec := &pathRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		w.Write([]byte(`<html><body><p>No art</p></body></html>`))
	}))
	defer server.Close()

	wc := newTestWebCatalog(t, server)
	_, ok, err := wc.LookupPoster(context.Background(), "alpha beta")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, rec.all(), 1, "a 2xx page ends the search")
}

func TestWebCatalog_Exhausted(t *testing.T) {
	rec := &pathRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	wc := newTestWebCatalog(t, server)
	_, ok, err := wc.LookupPoster(context.Background(), "[SubsPlease] One Two")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"/shows/one-two", "/shows/one"}, rec.all())
}

func TestWebCatalog_EmptySlug(t *testing.T) {
	rec := &pathRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
	}))
	defer server.Close()

	wc := newTestWebCatalog(t, server)
	_, ok, err := wc.LookupPoster(context.Background(), "[Group] ()")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rec.all())
}

func TestWebCatalog_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	wc := newTestWebCatalog(t, server)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := wc.LookupPoster(ctx, "alpha beta")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestWebCatalog_ClientTimeoutTruncates(t *testing.T) {
	rec := &pathRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		switch r.URL.Path {
		case "/shows/alpha-beta":
			select {
			case <-time.After(1500 * time.Millisecond):
			case <-r.Context().Done():
			}
		case "/shows/alpha":
			w.Write([]byte(`<img src="/alpha.jpg">`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	wc, err := NewWebCatalog(config.WebCatalogConfig{BaseURL: server.URL, Timeout: 1}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got, ok, err := wc.LookupPoster(ctx, "alpha beta")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, server.URL+"/alpha.jpg", got)
	assert.Equal(t, []string{"/shows/alpha-beta", "/shows/alpha"}, rec.all())
}

func TestWebCatalog_TransportErrorTruncates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	wc, err := NewWebCatalog(config.WebCatalogConfig{BaseURL: base, Timeout: 1}, zerolog.Nop())
	require.NoError(t, err)

	_, ok, err := wc.LookupPoster(context.Background(), "alpha beta")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewWebCatalog_InvalidBase(t *testing.T) {
	_, err := NewWebCatalog(config.WebCatalogConfig{BaseURL: "not a url"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestWebCatalog_Absolute(t *testing.T) {
	wc, err := NewWebCatalog(config.WebCatalogConfig{BaseURL: "https://subsplease.org"}, zerolog.Nop())
	require.NoError(t, err)

	tests := []struct {
		src  string
		want string
	}{
		{"/wp-content/a.jpg", "https://subsplease.org/wp-content/a.jpg"},
		{"https://other.org/b.jpg", "https://other.org/b.jpg"},
		{"//cdn.org/c.jpg", "https://cdn.org/c.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, wc.absolute(tt.src))
		})
	}
}
