// Package release turns release and file names into the fields used to
// search the catalog.
package release

import (
	"strconv"
	"strings"
	"time"

	"github.com/moistari/rls"

	"github.com/slipstream/mona/internal/cache"
	"github.com/slipstream/mona/internal/normalize"
)

// Parsed is the structured view of a raw query.
type Parsed struct {
	Title    string
	Year     int
	Seasons  []string
	FileName string
}

// SearchString returns "title" or "title (year)".
func (p Parsed) SearchString() (string, bool) {
	return normalize.SearchString(p.Title, p.Year)
}

// Season returns the first season as a number.
func (p Parsed) Season() (int, bool) {
	if len(p.Seasons) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(p.Seasons[0]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// HasTitle reports whether parsing found a usable title.
func (p Parsed) HasTitle() bool {
	return strings.TrimSpace(p.Title) != ""
}

// Parse parses a name without caching.
func Parse(name string) Parsed {
	name = strings.TrimSpace(name)
	parsed := Parsed{FileName: name}
	if name == "" {
		return parsed
	}

	r := rls.ParseString(name)
	parsed.Title = strings.TrimSpace(r.Title)
	parsed.Year = r.Year
	if r.Series > 0 {
		parsed.Seasons = []string{strconv.Itoa(r.Series)}
	}
	return parsed
}

// Parser parses names through a shared cache.
type Parser struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewParser creates a parser that keeps results in c for ttl.
func NewParser(c *cache.Cache, ttl time.Duration) *Parser {
	return &Parser{cache: c, ttl: ttl}
}

// Parse parses a release name, with caching. A nil parser parses directly.
func (p *Parser) Parse(name string) Parsed {
	name = strings.TrimSpace(name)
	if p == nil || p.cache == nil || name == "" {
		return Parse(name)
	}

	key := cache.Key("release", name)
	if cached, ok := p.cache.Get(key); ok {
		if parsed, ok := cached.(Parsed); ok {
			return parsed
		}
	}

	parsed := Parse(name)
	p.cache.Set(key, parsed, p.ttl)
	return parsed
}

// Clear removes a specific entry from cache
func (p *Parser) Clear(name string) {
	if p == nil || p.cache == nil {
		return
	}
	p.cache.Delete(cache.Key("release", strings.TrimSpace(name)))
}
