package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mona/internal/config"
)

type countingObserver struct {
	outcomes map[string]int
}

func (o *countingObserver) ObserveUpstream(upstream, outcome string) {
	if o.outcomes == nil {
		o.outcomes = make(map[string]int)
	}
	o.outcomes[upstream+":"+outcome]++
}

func newTestTorrentPage() *TorrentPage {
	return NewTorrentPage(config.TorrentConfig{
		AllowedPrefixes: []string{"https://nyaa.si", "https://sukebei.nyaa.si/"},
		Timeout:         5,
	}, zerolog.Nop())
}

func TestTorrentPage_AllowedURL(t *testing.T) {
	tp := newTestTorrentPage()

	tests := []struct {
		url  string
		want bool
	}{
		{"https://nyaa.si/view/2055976", true},
		{"https://sukebei.nyaa.si/view/1", true},
		{"https://sukebei.nyaa.si.evil.com/view/1", false},
		{"http://nyaa.si/view/1", false},
		{"https://example.com/?https://nyaa.si", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, tp.AllowedURL(tt.url))
		})
	}
}

func TestTorrentPage_ExtractImage(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
		wantOK bool
	}{
		{
			name: "markdown image",
			body: `<div id="torrent-description">Release notes
![cover](https://i.imgur.com/abc123.PNG) and https://i.imgur.com/second.jpg</div>`,
			status: http.StatusOK,
			want:   "https://i.imgur.com/abc123.PNG",
			wantOK: true,
		},
		{
			name:   "image outside description ignored",
			body:   `<img src="https://x.org/a.jpg"><div id="torrent-description">no art here</div>`,
			status: http.StatusOK,
		},
		{
			name:   "no description",
			body:   `<html><body></body></html>`,
			status: http.StatusOK,
		},
		{
			name:   "not found",
			body:   `gone`,
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			tp := newTestTorrentPage()
			obs := &countingObserver{}
			tp.SetObserver(obs)

			got, ok, err := tp.ExtractImage(context.Background(), server.URL+"/view/1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Len(t, obs.outcomes, 1)
		})
	}
}

func TestTorrentPage_TransportErrorIsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	pageURL := server.URL + "/view/1"
	server.Close()

	tp := newTestTorrentPage()
	_, ok, err := tp.ExtractImage(context.Background(), pageURL)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTorrentPage_ClientTimeoutIsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(1500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	tp := NewTorrentPage(config.TorrentConfig{Timeout: 1}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, ok, err := tp.ExtractImage(ctx, server.URL+"/view/1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTorrentPage_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tp := newTestTorrentPage()
	_, _, err := tp.ExtractImage(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
