package tvdb

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// LoginRequest is the request body for TVDB authentication.
type LoginRequest struct {
	APIKey string `json:"apikey"`
	Pin    string `json:"pin,omitempty"`
}

// LoginResponse is the response from TVDB authentication.
type LoginResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token string `json:"token"`
	} `json:"data"`
}

// ID is a TVDB record id. The API returns ids as JSON numbers on extended
// records and as strings on search hits.
type ID string

// UnmarshalJSON accepts a string, a number, or null.
func (i *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*i = ID(n.String())
	return nil
}

// Int returns the numeric id. Prefixed search ids such as "series-81189"
// yield their numeric suffix.
func (i ID) Int() (int64, bool) {
	s := string(i)
	if idx := strings.LastIndexByte(s, '-'); idx >= 0 {
		s = s[idx+1:]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// SearchResponse is the response from TVDB search.
type SearchResponse struct {
	Status string         `json:"status"`
	Data   []SearchResult `json:"data"`
}

// SearchResult is a search hit from TVDB.
type SearchResult struct {
	ObjectID        string            `json:"objectID"`
	ID              ID                `json:"id"`
	TvdbID          ID                `json:"tvdb_id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	Type            string            `json:"type"` // "series", "movie", etc.
	PrimaryType     string            `json:"primary_type"`
	PrimaryLanguage string            `json:"primary_language"`
	Year            string            `json:"year"`
	Overview        string            `json:"overview"`
	ImageURL        string            `json:"image_url"`
	Thumbnail       string            `json:"thumbnail"`
	Status          string            `json:"status"`
	Network         string            `json:"network"`
	Country         string            `json:"country"`
	Aliases         []string          `json:"aliases"`
	Translations    map[string]string `json:"translations"`
	Overviews       map[string]string `json:"overviews"`

	// Raw holds the undecoded record.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the record and keeps a copy of its raw form.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	type plain SearchResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = SearchResult(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// RecordID returns the numeric catalog id, preferring tvdb_id over the
// prefixed id and objectID fields.
func (r SearchResult) RecordID() (int64, bool) {
	for _, id := range []ID{r.TvdbID, r.ID, ID(r.ObjectID)} {
		if n, ok := id.Int(); ok {
			return n, true
		}
	}
	return 0, false
}

// SeriesResponse is the response for a single extended series.
type SeriesResponse struct {
	Status string         `json:"status"`
	Data   SeriesExtended `json:"data"`
}

// SeriesExtended is the extended series record.
type SeriesExtended struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Image            string    `json:"image"`
	OriginalLanguage string    `json:"originalLanguage"`
	Year             string    `json:"year"`
	Seasons          []Season  `json:"seasons"`
	Artworks         []Artwork `json:"artworks"`
}

// SeasonNumber returns the season whose number matches. Specials have
// number 0, and extended records may list several season orderings, so
// the first match wins.
func (s SeriesExtended) SeasonNumber(number int) (Season, bool) {
	for _, season := range s.Seasons {
		if season.Number == number {
			return season, true
		}
	}
	return Season{}, false
}

// Season is a season summary within an extended series record.
type Season struct {
	ID       int64  `json:"id"`
	SeriesID int64  `json:"seriesId"`
	Number   int    `json:"number"`
	Image    string `json:"image"`
	Type     struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"type"`
}

// SeasonResponse is the response for a single extended season.
type SeasonResponse struct {
	Status string         `json:"status"`
	Data   SeasonExtended `json:"data"`
}

// SeasonExtended is the extended season record.
type SeasonExtended struct {
	ID       int64     `json:"id"`
	SeriesID int64     `json:"seriesId"`
	Number   int       `json:"number"`
	Image    string    `json:"image"`
	Artwork  []Artwork `json:"artwork"`
}

// ArtworksResponse is the response for a series artwork listing.
type ArtworksResponse struct {
	Status string `json:"status"`
	Data   struct {
		ID       int64     `json:"id"`
		Artworks []Artwork `json:"artworks"`
	} `json:"data"`
}

// MovieResponse is the response for a single extended movie.
type MovieResponse struct {
	Status string        `json:"status"`
	Data   MovieExtended `json:"data"`
}

// MovieExtended is the extended movie record.
type MovieExtended struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Image    string    `json:"image"`
	Artworks []Artwork `json:"artworks"`
}

// Artwork is one artwork item.
type Artwork struct {
	ID        int64   `json:"id"`
	Image     string  `json:"image"`
	Thumbnail string  `json:"thumbnail"`
	Language  string  `json:"language"`
	Type      int     `json:"type"`
	Score     float64 `json:"score"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// FilterArtworks returns the items of the given type that carry an image.
// A type of 0 keeps every type.
func FilterArtworks(items []Artwork, artType int) []Artwork {
	out := make([]Artwork, 0, len(items))
	for _, item := range items {
		if item.Image == "" {
			continue
		}
		if artType != 0 && item.Type != artType {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ErrorResponse is an error from the TVDB API.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
