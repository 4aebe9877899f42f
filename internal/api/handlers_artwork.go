package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/mona/internal/release"
	"github.com/slipstream/mona/internal/resolver"
)

const maxQueryLength = 500

// GET /poster?query=
func (s *Server) poster(c echo.Context) error {
	q, err := s.parseQuery(c)
	if err != nil {
		return err
	}

	art, found, err := s.resolver.ResolvePoster(c.Request().Context(), q)
	return s.redirect(c, art, found, err, "poster")
}

// GET /fanart?query=
func (s *Server) fanart(c echo.Context) error {
	q, err := s.parseQuery(c)
	if err != nil {
		return err
	}

	art, found, err := s.resolver.RandomFanart(c.Request().Context(), q)
	return s.redirect(c, art, found, err, "fanart")
}

// GET /torrent-art?url=
func (s *Server) torrentArt(c echo.Context) error {
	pageURL := strings.TrimSpace(c.QueryParam("url"))
	if pageURL == "" || s.torrents == nil || !s.torrents.AllowedURL(pageURL) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url")
	}

	art, found, err := s.resolver.ResolveTorrentArt(c.Request().Context(), pageURL)
	return s.redirect(c, art, found, err, "art")
}

// GET /art/:name looks the name up on the web catalog directly.
func (s *Server) showArt(c echo.Context) error {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" || len(name) > maxQueryLength {
		return echo.NewHTTPError(http.StatusBadRequest, "name is invalid")
	}

	art, found, err := s.resolver.ResolveShowArt(c.Request().Context(), name)
	return s.redirect(c, art, found, err, "art")
}

func (s *Server) parseQuery(c echo.Context) (release.Parsed, error) {
	raw := strings.TrimSpace(c.QueryParam("query"))
	if raw == "" || len(raw) > maxQueryLength {
		return release.Parsed{}, echo.NewHTTPError(http.StatusBadRequest, "query is invalid")
	}

	var q release.Parsed
	if s.parser != nil {
		q = s.parser.Parse(raw)
	} else {
		q = release.Parse(raw)
	}
	if !q.HasTitle() {
		return release.Parsed{}, echo.NewHTTPError(http.StatusBadRequest, "query is invalid")
	}
	return q, nil
}

func (s *Server) redirect(c echo.Context, art resolver.Artwork, found bool, err error, what string) error {
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("uri", c.Request().RequestURI).
			Msg("Resolution aborted")
		return echo.NewHTTPError(http.StatusBadGateway, "upstream request failed")
	}
	if !found || art.URL == "" {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return c.Redirect(http.StatusTemporaryRedirect, art.URL)
}

// DELETE /cache
func (s *Server) clearCache(c echo.Context) error {
	s.resolver.ClearCache()
	s.logger.Info().Msg("Cache cleared")
	return c.NoContent(http.StatusNoContent)
}

// DELETE /cache/:kind?key=
func (s *Server) forgetCache(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "key is required")
	}

	if err := s.resolver.Forget(c.Param("kind"), key); err != nil {
		if errors.Is(err, resolver.ErrUnknownKind) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
